package services

import "testing"

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"", true},
		{"+61 2 9000 1000", true},
		{"(555) 010-0100", true},
		{"9876543210", true},
		{"12345", false},
		{"call me", false},
		{"+1234567890123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := ValidatePhone(tt.phone); got != tt.valid {
				t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.valid)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"", "a@x.com", "first.last+tag@sub.example.org"}
	invalid := []string{"plain", "a@x", "@x.com", "a b@x.com"}

	for _, e := range valid {
		if !ValidateEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if ValidateEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestValidateContact_RequiredFields(t *testing.T) {
	errs := ValidateContact(Contact{Phone: "x"})
	for _, field := range []string{"name", "email", "phone"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for %s, got %v", field, errs)
		}
	}

	if errs := ValidateContact(Contact{Name: "A", Email: "a@x.com"}); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateContacts_SinglePrimary(t *testing.T) {
	roster := []Contact{
		{ID: "a", Name: "A", Email: "a@x.com", IsPrimary: true},
		{ID: "b", Name: "B", Email: "bad", IsPrimary: true},
	}
	errs := ValidateContacts(roster)
	if errs["contacts"] == "" {
		t.Errorf("expected roster-level primary error, got %v", errs)
	}
	if errs["contacts.1.email"] == "" {
		t.Errorf("expected indexed email error, got %v", errs)
	}
}
