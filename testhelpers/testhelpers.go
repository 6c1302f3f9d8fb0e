// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/collections"
	"feeproposals/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app, runs collections.Setup to create all tables and
// ensures the workflow statuses exist.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)
	if err := collections.EnsureProposalStatuses(app); err != nil {
		t.Fatalf("failed to ensure proposal statuses: %v", err)
	}

	return app
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("reference_number", "TP-1")
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestProposal stores a proposal with one contact and one structure for
// the given project and returns the saved document.
func CreateTestProposal(t *testing.T, app *pocketbase.PocketBase, projectID, description string) services.Proposal {
	t.Helper()

	doc := services.NewProposal(projectID)
	doc.Description = description
	doc.CreatedBy = "tester"
	doc.Contacts = []services.Contact{
		{ID: "c-1", Name: "Jane Doe", Email: "jane@example.com", IsPrimary: true},
	}
	doc.ProjectData.Structures = []services.Structure{
		{ID: "s-1", Name: "Block A", FloorArea: 1000, Levels: []services.Level{
			{ID: "l-1", Name: "Ground", FloorArea: 500, Spaces: []services.Space{
				{ID: "sp-1", Name: "Hall", FloorArea: 200},
			}},
		}},
	}
	doc.ProjectData.Disciplines = []services.Discipline{
		{ID: "d-1", Name: "Mechanical", Active: true, Results: []services.CalculationResult{}},
	}

	saved, err := services.CreateProposal(app, doc, time.Now())
	if err != nil {
		t.Fatalf("failed to save test proposal: %v", err)
	}
	return saved
}

// SetTestProposalStatus forces a proposal into the given status code.
func SetTestProposalStatus(t *testing.T, app *pocketbase.PocketBase, proposalID, code string) {
	t.Helper()

	status, err := services.FindStatusByCode(app, code)
	if err != nil {
		t.Fatalf("failed to find status %q: %v", code, err)
	}
	record, err := app.FindRecordById("proposals", proposalID)
	if err != nil {
		t.Fatalf("failed to find proposal %s: %v", proposalID, err)
	}
	record.Set("status", status.Id)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to set proposal status: %v", err)
	}
}
