package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ProposalFromRecord converts a proposals record into a Proposal document.
// The status relation is resolved to its code.
func ProposalFromRecord(app core.App, record *core.Record) (Proposal, error) {
	p := Proposal{
		ID:                  record.Id,
		ProjectID:           record.GetString("project"),
		ProposalNumber:      record.GetString("proposal_number"),
		RevisionNumber:      record.GetInt("revision_number"),
		IsTemporaryRevision: record.GetBool("is_temporary_revision"),
		StatusID:            record.GetString("status"),
		Description:         record.GetString("description"),
		CreatedBy:           record.GetString("created_by"),
		UpdatedBy:           record.GetString("updated_by"),
		Created:             record.GetDateTime("created").Time(),
		Updated:             record.GetDateTime("updated").Time(),
		Version:             record.GetInt("version"),
	}

	if err := unmarshalIfSet(record, "contacts", &p.Contacts); err != nil {
		return Proposal{}, err
	}
	if err := unmarshalIfSet(record, "project_data", &p.ProjectData); err != nil {
		return Proposal{}, err
	}
	if err := unmarshalIfSet(record, "status_details", &p.StatusDetails); err != nil {
		return Proposal{}, err
	}

	if p.StatusID != "" {
		if status, err := app.FindRecordById("proposal_statuses", p.StatusID); err == nil {
			p.Status = status.GetString("code")
		}
	}

	p.Normalize()
	return p, nil
}

func unmarshalIfSet(record *core.Record, field string, dst any) error {
	raw := record.GetString(field)
	if raw == "" || raw == "null" {
		return nil
	}
	if err := record.UnmarshalJSONField(field, dst); err != nil {
		return fmt.Errorf("decode %s of proposal %s: %w", field, record.Id, err)
	}
	return nil
}

// applyProposalFields copies the client-editable fields of p onto record.
// Identity, numbering and version are managed by the store.
func applyProposalFields(record *core.Record, p Proposal) {
	p.Normalize()
	record.Set("description", p.Description)
	record.Set("is_temporary_revision", p.IsTemporaryRevision)
	record.Set("contacts", p.Contacts)
	record.Set("project_data", p.ProjectData)
	if p.UpdatedBy != "" {
		record.Set("updated_by", p.UpdatedBy)
	}
}

// FindStatusByCode returns the proposal_statuses record with the given code.
func FindStatusByCode(app core.App, code string) (*core.Record, error) {
	record, err := app.FindFirstRecordByData("proposal_statuses", "code", code)
	if err != nil {
		return nil, fmt.Errorf("status %q: %w", code, ErrNotFound)
	}
	return record, nil
}

// LoadProposal fetches the proposal document with the given id.
func LoadProposal(app *pocketbase.PocketBase, id string) (Proposal, error) {
	record, err := app.FindRecordById("proposals", id)
	if err != nil {
		return Proposal{}, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	return ProposalFromRecord(app, record)
}

// CreateProposal stores p as a new proposal. The store assigns the id, the
// proposal number (unless p continues an existing number as a new revision),
// the revision number, the draft status when none is given, and version 1.
// Numbering and the insert run in one transaction.
func CreateProposal(app *pocketbase.PocketBase, p Proposal, now time.Time) (Proposal, error) {
	if p.ProjectID == "" {
		return Proposal{}, fmt.Errorf("create proposal: project_id is required")
	}

	var saved *core.Record
	err := app.RunInTransaction(func(txApp core.App) error {
		if _, err := txApp.FindRecordById("projects", p.ProjectID); err != nil {
			return fmt.Errorf("project %s: %w", p.ProjectID, ErrNotFound)
		}

		col, err := txApp.FindCollectionByNameOrId("proposals")
		if err != nil {
			return fmt.Errorf("find proposals collection: %w", err)
		}

		number := p.ProposalNumber
		revision := 1
		if number == "" {
			number, err = GenerateProposalNumber(txApp, p.ProjectID, now)
		} else {
			revision, err = NextRevisionNumber(txApp, number)
		}
		if err != nil {
			return err
		}

		statusID := p.StatusID
		if statusID == "" {
			draft, err := FindStatusByCode(txApp, StatusDraft)
			if err != nil {
				return err
			}
			statusID = draft.Id
		} else if _, err := txApp.FindRecordById("proposal_statuses", statusID); err != nil {
			return fmt.Errorf("status %s: %w", statusID, ErrNotFound)
		}

		record := core.NewRecord(col)
		record.Set("project", p.ProjectID)
		record.Set("proposal_number", number)
		record.Set("revision_number", revision)
		record.Set("status", statusID)
		record.Set("created_by", p.CreatedBy)
		record.Set("updated_by", p.CreatedBy)
		record.Set("version", 1)
		applyProposalFields(record, p)

		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save proposal: %w", err)
		}
		saved = record
		return nil
	})
	if err != nil {
		return Proposal{}, err
	}
	return ProposalFromRecord(app, saved)
}

// UpdateProposal replaces the stored document with p. A non-zero p.Version
// must equal the stored version, otherwise ErrVersionConflict is returned and
// nothing is written. The stored version is incremented on every save.
func UpdateProposal(app *pocketbase.PocketBase, id string, p Proposal) (Proposal, error) {
	var saved *core.Record

	err := app.RunInTransaction(func(txApp core.App) error {
		record, err := txApp.FindRecordById("proposals", id)
		if err != nil {
			return fmt.Errorf("proposal %s: %w", id, ErrNotFound)
		}

		current := record.GetInt("version")
		if p.Version != 0 && p.Version != current {
			return fmt.Errorf("proposal %s at version %d, got %d: %w", id, current, p.Version, ErrVersionConflict)
		}

		applyProposalFields(record, p)
		record.Set("version", current+1)

		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save proposal: %w", err)
		}
		saved = record
		return nil
	})
	if err != nil {
		return Proposal{}, err
	}
	return ProposalFromRecord(app, saved)
}

// TransitionProposal applies a workflow action. When statusID is given it must
// reference the status the action leads to. A non-zero version must equal the
// stored version, as for UpdateProposal. extra is stored as the status details
// of the proposal next to the action and the previous status.
func TransitionProposal(app *pocketbase.PocketBase, id, action, statusID string, version int, extra map[string]any) (Proposal, error) {
	var saved *core.Record

	err := app.RunInTransaction(func(txApp core.App) error {
		record, err := txApp.FindRecordById("proposals", id)
		if err != nil {
			return fmt.Errorf("proposal %s: %w", id, ErrNotFound)
		}

		currentVersion := record.GetInt("version")
		if version != 0 && version != currentVersion {
			return fmt.Errorf("proposal %s at version %d, got %d: %w", id, currentVersion, version, ErrVersionConflict)
		}

		current := StatusDraft
		if sid := record.GetString("status"); sid != "" {
			if status, err := txApp.FindRecordById("proposal_statuses", sid); err == nil {
				current = status.GetString("code")
			}
		}

		target, err := ResolveTransition(current, action)
		if err != nil {
			return err
		}

		var targetStatus *core.Record
		if statusID != "" {
			targetStatus, err = txApp.FindRecordById("proposal_statuses", statusID)
			if err != nil {
				return fmt.Errorf("status %s: %w", statusID, ErrNotFound)
			}
			if targetStatus.GetString("code") != target {
				return fmt.Errorf("%w: %s leads to %s, not %s",
					ErrInvalidTransition, action, target, targetStatus.GetString("code"))
			}
		} else {
			targetStatus, err = FindStatusByCode(txApp, target)
			if err != nil {
				return err
			}
		}

		details := make(map[string]any, len(extra)+2)
		for k, v := range extra {
			details[k] = v
		}
		details["action"] = action
		details["from"] = current

		record.Set("status", targetStatus.Id)
		record.Set("status_details", details)
		record.Set("version", currentVersion+1)
		if by, ok := extra["updated_by"].(string); ok && by != "" {
			record.Set("updated_by", by)
		}

		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("save proposal: %w", err)
		}
		saved = record
		return nil
	})
	if err != nil {
		return Proposal{}, err
	}
	return ProposalFromRecord(app, saved)
}

// DeleteProposal removes a proposal. Only draft and cancelled proposals may be
// deleted.
func DeleteProposal(app *pocketbase.PocketBase, id string) error {
	p, err := LoadProposal(app, id)
	if err != nil {
		return err
	}
	if p.Status != StatusDraft && p.Status != StatusCancelled {
		return fmt.Errorf("%w: cannot delete a %s proposal", ErrInvalidTransition, p.Status)
	}

	record, err := app.FindRecordById("proposals", id)
	if err != nil {
		return fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	if err := app.Delete(record); err != nil {
		return fmt.Errorf("delete proposal %s: %w", id, err)
	}
	return nil
}

// ProposalSummaryRow is one entry of a project's proposal list.
type ProposalSummaryRow struct {
	ID             string    `json:"id"`
	ProposalNumber string    `json:"proposal_number"`
	RevisionNumber int       `json:"revision_number"`
	Status         string    `json:"status"`
	Description    string    `json:"description"`
	ContactCount   int       `json:"contact_count"`
	Updated        time.Time `json:"updated,omitzero"`
}

// ListProjectProposals returns summaries of every proposal of a project,
// newest number and revision first.
func ListProjectProposals(app *pocketbase.PocketBase, projectID string) ([]ProposalSummaryRow, error) {
	if _, err := app.FindRecordById("projects", projectID); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}

	records, err := app.FindRecordsByFilter(
		"proposals",
		"project = {:projectId}",
		"-proposal_number,-revision_number",
		0, 0,
		map[string]any{"projectId": projectID},
	)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	rows := make([]ProposalSummaryRow, 0, len(records))
	for _, rec := range records {
		p, err := ProposalFromRecord(app, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ProposalSummaryRow{
			ID:             p.ID,
			ProposalNumber: p.ProposalNumber,
			RevisionNumber: p.RevisionNumber,
			Status:         p.Status,
			Description:    p.Description,
			ContactCount:   len(p.Contacts),
			Updated:        p.Updated,
		})
	}
	return rows, nil
}
