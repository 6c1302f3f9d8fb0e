package services

import (
	"testing"
	"time"
)

func TestGetFiscalYear(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		expect string
	}{
		{"april_start", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), "26-27"},
		{"march_end", time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), "25-26"},
		{"january", time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), "25-26"},
		{"december", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "25-26"},
		{"year_2000", time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC), "00-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetFiscalYear(tt.date)
			if got != tt.expect {
				t.Errorf("GetFiscalYear(%v) = %q, want %q", tt.date, got, tt.expect)
			}
		})
	}
}

func TestFormatProposalNumber(t *testing.T) {
	tests := []struct {
		ref, fy string
		seq     int
		expect  string
	}{
		{"HV-01", "25-26", 1, "FP-HV-01-25-26-001"},
		{"HV-01", "25-26", 12, "FP-HV-01-25-26-012"},
		{"PROJ", "26-27", 1000, "FP-PROJ-26-27-1000"},
	}
	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			got := formatProposalNumber(tt.ref, tt.fy, tt.seq)
			if got != tt.expect {
				t.Errorf("formatProposalNumber(%q, %q, %d) = %q, want %q", tt.ref, tt.fy, tt.seq, got, tt.expect)
			}
		})
	}
}
