package services

import (
	"fmt"
	"testing"
)

// useSequentialIDs makes newContactID deterministic for the duration of a test.
func useSequentialIDs(t *testing.T) {
	t.Helper()
	orig := newContactID
	n := 0
	newContactID = func() string {
		n++
		return fmt.Sprintf("contact-%d", n)
	}
	t.Cleanup(func() { newContactID = orig })
}

func countPrimaries(contacts []Contact) int {
	n := 0
	for _, c := range contacts {
		if c.IsPrimary {
			n++
		}
	}
	return n
}

func TestAddContact_GeneratesID(t *testing.T) {
	useSequentialIDs(t)

	roster, added := AddContact(nil, Contact{ID: "ignored", Name: "A", Email: "a@x.com"})
	if len(roster) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(roster))
	}
	if added.ID != "contact-1" || roster[0].ID != "contact-1" {
		t.Errorf("expected generated id contact-1, got %q / %q", added.ID, roster[0].ID)
	}
}

func TestAddContact_DefaultGeneratorIsUnique(t *testing.T) {
	roster, a := AddContact(nil, Contact{Name: "A"})
	roster, b := AddContact(roster, Contact{Name: "B"})
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if len(roster) != 2 {
		t.Errorf("expected 2 contacts, got %d", len(roster))
	}
}

func TestAddThenRemoveContact_EmptiesRoster(t *testing.T) {
	roster, added := AddContact([]Contact{}, Contact{Name: "A", Email: "a@x.com", IsPrimary: false})
	if len(roster) != 1 || added.ID == "" {
		t.Fatalf("expected one contact with a generated id, got %+v", roster)
	}

	roster = RemoveContact(roster, added.ID)
	if len(roster) != 0 {
		t.Errorf("expected empty roster, got %+v", roster)
	}
}

func TestSetPrimaryContact_Exclusive(t *testing.T) {
	useSequentialIDs(t)

	var roster []Contact
	for i := 0; i < 4; i++ {
		roster, _ = AddContact(roster, Contact{Name: fmt.Sprintf("C%d", i), IsPrimary: i == 0})
	}

	for _, id := range []string{"contact-3", "contact-1", "contact-4", "contact-4", "contact-2"} {
		roster = SetPrimaryContact(roster, id)
		if n := countPrimaries(roster); n != 1 {
			t.Fatalf("after SetPrimaryContact(%s) %d contacts are primary", id, n)
		}
		p, ok := PrimaryContact(roster)
		if !ok || p.ID != id {
			t.Errorf("expected %s to be primary, got %+v", id, p)
		}
	}
}

func TestSetPrimaryContact_UnknownIDIsNoop(t *testing.T) {
	roster := []Contact{{ID: "a", IsPrimary: true}, {ID: "b"}}
	got := SetPrimaryContact(roster, "missing")
	if !got[0].IsPrimary || got[1].IsPrimary {
		t.Errorf("unknown id should leave roster unchanged, got %+v", got)
	}
}

func TestAddContact_PrimaryDemotesOthers(t *testing.T) {
	roster := []Contact{{ID: "a", IsPrimary: true}}
	roster, added := AddContact(roster, Contact{Name: "B", IsPrimary: true})
	if countPrimaries(roster) != 1 {
		t.Fatalf("expected exactly one primary, got %+v", roster)
	}
	if p, _ := PrimaryContact(roster); p.ID != added.ID {
		t.Errorf("expected new contact to be primary, got %s", p.ID)
	}
}

func TestUpdateContact_ShallowMerge(t *testing.T) {
	roster := []Contact{
		{ID: "a", Name: "Ann", Email: "ann@x.com", Role: "PM", IsPrimary: true},
		{ID: "b", Name: "Bob", Email: "bob@x.com"},
	}
	newEmail := "ann@new.com"
	phone := "+1 555 0100"

	got := UpdateContact(roster, "a", ContactPatch{Email: &newEmail, Phone: &phone})

	if got[0].Email != newEmail || got[0].Phone != phone {
		t.Errorf("patch not applied: %+v", got[0])
	}
	if got[0].Name != "Ann" || got[0].Role != "PM" || !got[0].IsPrimary {
		t.Errorf("unpatched fields changed: %+v", got[0])
	}
	if roster[0].Email != "ann@x.com" {
		t.Error("input roster was modified")
	}
}

func TestUpdateContact_UnknownIDIsNoop(t *testing.T) {
	roster := []Contact{{ID: "a", Name: "Ann"}}
	name := "Zed"
	got := UpdateContact(roster, "missing", ContactPatch{Name: &name})
	if len(got) != 1 || got[0].Name != "Ann" {
		t.Errorf("expected unchanged roster, got %+v", got)
	}
}

func TestUpdateContact_PrimaryKeepsInvariant(t *testing.T) {
	roster := []Contact{{ID: "a", IsPrimary: true}, {ID: "b"}}
	yes := true
	got := UpdateContact(roster, "b", ContactPatch{IsPrimary: &yes})
	if got[0].IsPrimary || !got[1].IsPrimary {
		t.Errorf("expected b to be the only primary, got %+v", got)
	}
}

func TestRemoveContact_PrimaryNotReassigned(t *testing.T) {
	roster := []Contact{{ID: "a", IsPrimary: true}, {ID: "b"}}
	got := RemoveContact(roster, "a")
	if len(got) != 1 || got[0].IsPrimary {
		t.Errorf("expected b to remain non-primary, got %+v", got)
	}
	if same := RemoveContact(got, "missing"); len(same) != 1 {
		t.Errorf("unknown id should be a no-op, got %+v", same)
	}
}

func TestSearchContacts_AndAcrossTokens(t *testing.T) {
	roster := []Contact{
		{ID: "1", Name: "John Smith", Email: "js@acme.com"},
		{ID: "2", Name: "John Doe", Email: "john.doe@smith-eng.com"},
		{ID: "3", Name: "Jane Smith", Role: "Architect"},
		{ID: "4", Name: "Johnny", Company: "Smithson Ltd"},
		{ID: "5", Name: "Alice", Phone: "555-0100"},
	}

	tests := []struct {
		query  string
		expect []string
	}{
		{"john smith", []string{"1", "2", "4"}},
		{"JOHN", []string{"1", "2", "4"}},
		{"  smith   architect ", []string{"3"}},
		{"555", []string{"5"}},
		{"nobody", []string{}},
		{"", []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := SearchContacts(roster, tt.query)
			if len(got) != len(tt.expect) {
				t.Fatalf("SearchContacts(%q) returned %d contacts, want %d", tt.query, len(got), len(tt.expect))
			}
			for i, c := range got {
				if c.ID != tt.expect[i] {
					t.Errorf("SearchContacts(%q)[%d] = %s, want %s", tt.query, i, c.ID, tt.expect[i])
				}
			}
		})
	}
}

func TestSearchContacts_NarrowingIsSubset(t *testing.T) {
	roster := []Contact{
		{ID: "1", Name: "John Smith"},
		{ID: "2", Name: "John Doe"},
		{ID: "3", Name: "Smith Jones"},
	}
	broad := SearchContacts(roster, "john")
	narrow := SearchContacts(roster, "john smith")

	inBroad := make(map[string]bool)
	for _, c := range broad {
		inBroad[c.ID] = true
	}
	for _, c := range narrow {
		if !inBroad[c.ID] {
			t.Errorf("%s matched the narrower query but not the broader one", c.ID)
		}
	}
	if len(narrow) > len(broad) {
		t.Errorf("narrow query returned more results (%d) than broad (%d)", len(narrow), len(broad))
	}
}
