package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// GetFiscalYear returns the fiscal year string for a given date.
// The fiscal year runs April to March.
// Jan 2026 → "25-26", May 2026 → "26-27"
func GetFiscalYear(t time.Time) string {
	year := t.Year()
	month := t.Month()

	var startYear int
	if month >= time.April {
		startYear = year
	} else {
		startYear = year - 1
	}
	endYear := startYear + 1

	return fmt.Sprintf("%02d-%02d", startYear%100, endYear%100)
}

// formatProposalNumber constructs the proposal number string from components.
func formatProposalNumber(projectRef, fiscalYear string, sequence int) string {
	return fmt.Sprintf("FP-%s-%s-%03d", projectRef, fiscalYear, sequence)
}

// GenerateProposalNumber creates the next proposal number for a project.
// Format: FP-{project_ref}-{fiscal_year}-{sequence}
// - project_ref: project's reference_number (falls back to project ID if empty)
// - fiscal_year: April-March, e.g., "25-26"
// - sequence: 3-digit zero-padded, per project reference and fiscal year, one past the
//   highest sequence stored. Revisions of one proposal share its number, and
//   deleting a proposal never brings back a number that is still stored.
func GenerateProposalNumber(app core.App, projectID string, now time.Time) (string, error) {
	project, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return "", fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	projectRef := project.GetString("reference_number")
	if projectRef == "" {
		projectRef = projectID
	}

	fiscalYear := GetFiscalYear(now)
	prefix := fmt.Sprintf("FP-%s-%s-", projectRef, fiscalYear)

	existing, err := app.FindRecordsByFilter(
		"proposals",
		"proposal_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": prefix + "%"},
	)
	if err != nil {
		return "", fmt.Errorf("find proposal numbers with prefix %s: %w", prefix, err)
	}

	highest := 0
	for _, rec := range existing {
		if seq, ok := proposalSequence(rec.GetString("proposal_number"), prefix); ok && seq > highest {
			highest = seq
		}
	}

	return formatProposalNumber(projectRef, fiscalYear, highest+1), nil
}

// proposalSequence extracts the trailing sequence of number when it carries
// prefix.
func proposalSequence(number, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// NextRevisionNumber returns the revision number a new revision of
// proposalNumber should carry: one past the highest stored revision.
func NextRevisionNumber(app core.App, proposalNumber string) (int, error) {
	records, err := app.FindRecordsByFilter(
		"proposals",
		"proposal_number = {:number}",
		"-revision_number",
		1,
		0,
		map[string]any{"number": proposalNumber},
	)
	if err != nil {
		return 0, fmt.Errorf("find revisions of %s: %w", proposalNumber, err)
	}
	if len(records) == 0 {
		return 1, nil
	}
	return records[0].GetInt("revision_number") + 1, nil
}
