package services

import (
	"strings"

	"github.com/google/uuid"
)

// newContactID generates identifiers for contacts created locally.
var newContactID = uuid.NewString

// ContactPatch is a shallow update of a contact. Nil fields are left as-is.
type ContactPatch struct {
	Name      *string        `json:"name,omitempty"`
	Email     *string        `json:"email,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	Role      *string        `json:"role,omitempty"`
	Company   *string        `json:"company,omitempty"`
	IsPrimary *bool          `json:"is_primary,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// AddContact appends c to the roster under a freshly generated id and returns
// the new roster together with the stored contact. Email uniqueness is not
// checked. A contact added as primary demotes every other contact.
func AddContact(contacts []Contact, c Contact) ([]Contact, Contact) {
	c.ID = newContactID()

	out := make([]Contact, 0, len(contacts)+1)
	out = append(out, contacts...)
	out = append(out, c)

	if c.IsPrimary {
		out = SetPrimaryContact(out, c.ID)
	}
	return out, c
}

// UpdateContact merges patch into the contact with the given id. Unknown ids
// leave the roster unchanged. Setting is_primary=true goes through
// SetPrimaryContact so at most one contact stays primary.
func UpdateContact(contacts []Contact, id string, patch ContactPatch) []Contact {
	idx := indexOfContact(contacts, id)
	if idx < 0 {
		return contacts
	}

	out := make([]Contact, len(contacts))
	copy(out, contacts)

	c := &out[idx]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Role != nil {
		c.Role = *patch.Role
	}
	if patch.Company != nil {
		c.Company = *patch.Company
	}
	if patch.Details != nil {
		c.Details = patch.Details
	}
	if patch.IsPrimary != nil {
		if *patch.IsPrimary {
			return SetPrimaryContact(out, id)
		}
		c.IsPrimary = false
	}
	return out
}

// RemoveContact drops the contact with the given id. The primary flag is not
// reassigned when the removed contact held it.
func RemoveContact(contacts []Contact, id string) []Contact {
	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// SetPrimaryContact marks the contact with the given id as primary and every
// other contact as not primary. Unknown ids leave the roster unchanged.
func SetPrimaryContact(contacts []Contact, id string) []Contact {
	if indexOfContact(contacts, id) < 0 {
		return contacts
	}

	out := make([]Contact, len(contacts))
	for i, c := range contacts {
		c.IsPrimary = c.ID == id
		out[i] = c
	}
	return out
}

// PrimaryContact returns the primary contact, if any.
func PrimaryContact(contacts []Contact) (Contact, bool) {
	for _, c := range contacts {
		if c.IsPrimary {
			return c, true
		}
	}
	return Contact{}, false
}

// SearchContacts returns the contacts whose name, email, phone, role and
// company together contain every whitespace-separated token of query,
// case-insensitively. An empty query matches every contact.
func SearchContacts(contacts []Contact, query string) []Contact {
	tokens := strings.Fields(strings.ToLower(query))

	out := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		haystack := strings.ToLower(strings.Join([]string{c.Name, c.Email, c.Phone, c.Role, c.Company}, " "))
		matched := true
		for _, tok := range tokens {
			if !strings.Contains(haystack, tok) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, c)
		}
	}
	return out
}

func indexOfContact(contacts []Contact, id string) int {
	for i, c := range contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
