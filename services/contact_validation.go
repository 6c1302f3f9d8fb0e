package services

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	contactEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Optional leading +, then digits with common separators; 7 to 15 digits.
	contactPhonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{7,20}$`)
)

// ValidateEmail validates an email address format. Empty values are valid.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return true
	}
	return contactEmailPattern.MatchString(email)
}

// ValidatePhone validates an international phone number. Empty values are valid.
func ValidatePhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return true
	}
	if !contactPhonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// ValidateContact checks required fields and formats and returns a map of
// field -> error message for any violations.
func ValidateContact(c Contact) map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(c.Name) == "" {
		errors["name"] = "Name is required"
	}
	if strings.TrimSpace(c.Email) == "" {
		errors["email"] = "Email is required"
	} else if !ValidateEmail(c.Email) {
		errors["email"] = "Invalid email format"
	}
	if !ValidatePhone(c.Phone) {
		errors["phone"] = "Invalid phone number (expected 7-15 digits, optional leading +)"
	}

	return errors
}

// ValidateContacts validates every contact in the roster and additionally
// rejects rosters with more than one primary contact. Keys are prefixed with
// the contact index, e.g. "contacts.0.email".
func ValidateContacts(contacts []Contact) map[string]string {
	errors := make(map[string]string)
	primaries := 0
	for i, c := range contacts {
		for field, msg := range ValidateContact(c) {
			errors[contactKey(i, field)] = msg
		}
		if c.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		errors["contacts"] = "Only one contact can be primary"
	}
	return errors
}

func contactKey(i int, field string) string {
	return fmt.Sprintf("contacts.%d.%s", i, field)
}
