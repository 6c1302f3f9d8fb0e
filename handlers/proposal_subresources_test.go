package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"feeproposals/services"
	"feeproposals/testhelpers"
)

func TestHandleProposalAction(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Actions")
	doc := testhelpers.CreateTestProposal(t, app, proj.Id, "workflow")

	t.Run("review with details", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/review", map[string]any{
			"note":       "ready for checking",
			"updated_by": "alice",
		})
		req.SetPathValue("id", doc.ID)
		rec := callHandler(t, app, HandleProposalAction(app, "review"), req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeProposal(t, rec)
		if got.Status != services.StatusInReview {
			t.Errorf("expected in_review, got %q", got.Status)
		}
		if got.StatusDetails["note"] != "ready for checking" || got.StatusDetails["from"] != services.StatusDraft {
			t.Errorf("unexpected status details: %v", got.StatusDetails)
		}
		if got.UpdatedBy != "alice" {
			t.Errorf("expected updated_by alice, got %q", got.UpdatedBy)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/approve", nil)
		req.SetPathValue("id", doc.ID)
		rec := callHandler(t, app, HandleProposalAction(app, "approve"), req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeProposal(t, rec); got.Status != services.StatusApproved {
			t.Errorf("expected approved, got %q", got.Status)
		}
	})

	t.Run("invalid transition", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/client-approve", nil)
		req.SetPathValue("id", doc.ID)
		rec := callHandler(t, app, HandleProposalAction(app, "client-approve"), req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("stale version", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/hold", map[string]any{
			"version": 99,
			"note":    "pause",
		})
		req.SetPathValue("id", doc.ID)
		rec := callHandler(t, app, HandleProposalAction(app, "hold"), req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		current, err := services.LoadProposal(app, doc.ID)
		if err != nil {
			t.Fatalf("LoadProposal: %v", err)
		}
		if current.Status != services.StatusApproved {
			t.Errorf("stale action changed status to %q", current.Status)
		}
	})

	t.Run("current version", func(t *testing.T) {
		current, err := services.LoadProposal(app, doc.ID)
		if err != nil {
			t.Fatalf("LoadProposal: %v", err)
		}
		req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/hold", map[string]any{
			"version": current.Version,
		})
		req.SetPathValue("id", doc.ID)
		rec := callHandler(t, app, HandleProposalAction(app, "hold"), req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeProposal(t, rec)
		if got.Version != current.Version+1 {
			t.Errorf("expected version %d, got %d", current.Version+1, got.Version)
		}
		if _, ok := got.StatusDetails["version"]; ok {
			t.Errorf("version leaked into status details: %v", got.StatusDetails)
		}
	})

	t.Run("missing proposal", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/proposals/nope/review", nil)
		req.SetPathValue("id", "nope")
		rec := callHandler(t, app, HandleProposalAction(app, "review"), req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleProposalCalculations_Tagged(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Calculations")
	doc := testhelpers.CreateTestProposal(t, app, proj.Id, "fees")

	body := map[string]any{
		"kind":    "fixed",
		"version": doc.Version,
		"batch": map[string]any{
			"type": "design",
			"results": []map[string]any{
				{"structure_id": "s-1", "category": "base_fee", "value": 8000},
				{"structure_id": "s-1", "level_id": "l-1", "space_id": "sp-1", "category": "hall", "value": 500},
			},
			"parameters": map[string]any{"table": "standard"},
		},
	}
	req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/calculations", body)
	req.SetPathValue("id", doc.ID)
	rec := callHandler(t, app, HandleProposalCalculations(app), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeProposal(t, rec)
	design := got.ProjectData.Calculations.Design
	if len(design.Structures) != 1 || len(design.Spaces) != 1 || len(design.Levels) != 0 {
		t.Fatalf("unexpected buckets: %+v", design)
	}
	if design.Structures[0].Source != services.SourceFixedFees {
		t.Errorf("expected fixed fee source, got %q", design.Structures[0].Source)
	}
	if len(got.ProjectData.CalculationHistory) != 1 {
		t.Errorf("expected one history entry, got %d", len(got.ProjectData.CalculationHistory))
	}
	if got.Version != doc.Version+1 {
		t.Errorf("expected version %d, got %d", doc.Version+1, got.Version)
	}
}

func TestHandleProposalCalculations_LegacyPayload(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Legacy")
	doc := testhelpers.CreateTestProposal(t, app, proj.Id, "fees")

	body := `{"type":"construction","results":[{"structure_id":"s-1","category":"site","value":300,"parameters":{"hours":3}}]}`
	req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/calculations", body)
	req.SetPathValue("id", doc.ID)
	rec := callHandler(t, app, HandleProposalCalculations(app), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeProposal(t, rec)
	results := got.ProjectData.Calculations.Construction.Structures
	if len(results) != 1 {
		t.Fatalf("expected one construction result, got %d", len(results))
	}
	if results[0].Source != services.SourceFormula || results[0].Parameters["calculation_type"] != "flexfees" {
		t.Errorf("expected formula batch to be inferred, got %+v", results[0])
	}
}

func TestHandleProposalCalculations_Rejections(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Rejections")
	doc := testhelpers.CreateTestProposal(t, app, proj.Id, "fees")

	tests := []struct {
		name   string
		body   string
		expect int
	}{
		{"no results", `{"kind":"fixed","batch":{"type":"design"}}`, http.StatusBadRequest},
		{"bad phase", `{"kind":"fixed","batch":{"type":"tender","results":[]}}`, http.StatusBadRequest},
		{"bad kind", `{"kind":"guess","batch":{"type":"design","results":[]}}`, http.StatusBadRequest},
		{"nested parameter", `{"type":"design","results":[{"category":"x","value":1,"parameters":{"a":{"b":1}}}]}`, http.StatusBadRequest},
		{"stale version", `{"kind":"fixed","version":99,"batch":{"type":"design","results":[]}}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, http.MethodPost, "/api/proposals/"+doc.ID+"/calculations", tt.body)
			req.SetPathValue("id", doc.ID)
			rec := callHandler(t, app, HandleProposalCalculations(app), req)
			if rec.Code != tt.expect {
				t.Errorf("expected %d, got %d: %s", tt.expect, rec.Code, rec.Body.String())
			}
		})
	}

	current, _ := services.LoadProposal(app, doc.ID)
	if current.Version != doc.Version {
		t.Errorf("rejected batches changed the document version to %d", current.Version)
	}
}

func TestHandleProposalContactSearch(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Contacts")
	doc := testhelpers.CreateTestProposal(t, app, proj.Id, "contacts")

	tests := []struct {
		query string
		count int
	}{
		{"", 1},
		{"jane", 1},
		{"JANE example.com", 1},
		{"john", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/proposals/"+doc.ID+"/contacts?q="+strings.ReplaceAll(tt.query, " ", "+"), nil)
			req.SetPathValue("id", doc.ID)
			rec := callHandler(t, app, HandleProposalContactSearch(app), req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var body struct {
				Query    string             `json:"query"`
				Contacts []services.Contact `json:"contacts"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Query != tt.query {
				t.Errorf("query echoed as %q, want %q", body.Query, tt.query)
			}
			if len(body.Contacts) != tt.count {
				t.Errorf("expected %d contacts, got %d", tt.count, len(body.Contacts))
			}
		})
	}
}

func TestHandleProposalExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Export")
	doc := testhelpers.CreateTestProposal(t, app, proj.Id, "export me")

	req := httptest.NewRequest(http.MethodGet, "/api/proposals/"+doc.ID+"/export/excel", nil)
	req.SetPathValue("id", doc.ID)
	rec := callHandler(t, app, HandleProposalExportExcel(app), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "_rev1.xlsx") || strings.Contains(disposition, "/") {
		t.Errorf("unexpected content disposition %q", disposition)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("Summary"); idx < 0 {
		t.Error("expected Summary sheet")
	}
}

func TestHandleProposalExportExcel_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/proposals/nope/export/excel", nil)
	req.SetPathValue("id", "nope")
	rec := callHandler(t, app, HandleProposalExportExcel(app), req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleProjectProposalList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "List")
	testhelpers.CreateTestProposal(t, app, proj.Id, "one")
	testhelpers.CreateTestProposal(t, app, proj.Id, "two")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+proj.Id+"/proposals", nil)
	req.SetPathValue("projectId", proj.Id)
	rec := callHandler(t, app, HandleProjectProposalList(app), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []services.ProposalSummaryRow `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(body.Items))
	}
}

func TestHandleProposalStatusList(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/proposal-statuses", nil)
	rec := callHandler(t, app, HandleProposalStatusList(app), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []statusItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != len(services.ProposalStatuses) {
		t.Fatalf("expected %d statuses, got %d", len(services.ProposalStatuses), len(body.Items))
	}
	for i, item := range body.Items {
		if item.Code != services.ProposalStatuses[i].Code {
			t.Errorf("item %d: expected %q, got %q", i, services.ProposalStatuses[i].Code, item.Code)
		}
	}
}
