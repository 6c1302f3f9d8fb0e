package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// newProposalID is the path id used to create a proposal.
const newProposalID = "new"

// HandleProposalGet returns the whole proposal document.
func HandleProposalGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" || id == newProposalID {
			return ErrorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		doc, err := services.LoadProposal(app, id)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_get", err)
		}
		return e.JSON(http.StatusOK, doc)
	}
}

// HandleProposalCreate stores a new proposal posted to /api/proposals/new and
// returns it with the server-assigned id, number, revision and version.
func HandleProposalCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Request.PathValue("id") != newProposalID {
			return ErrorJSON(e, http.StatusMethodNotAllowed, "Use PUT to update an existing proposal")
		}

		var doc services.Proposal
		if err := decodeJSONBody(e, &doc); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}
		if doc.ProjectID == "" {
			return ValidationErrorJSON(e, map[string]string{"project_id": "Project is required"})
		}
		if errs := services.ValidateContacts(doc.Contacts); len(errs) > 0 {
			return ValidationErrorJSON(e, errs)
		}

		saved, err := services.CreateProposal(app, doc, time.Now())
		if err != nil {
			return ServiceErrorJSON(e, "proposal_create", err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

// HandleProposalUpdate replaces the stored document. A stale version is
// rejected with 409 so concurrent edits are not silently lost.
func HandleProposalUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" || id == newProposalID {
			return ErrorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		var doc services.Proposal
		if err := decodeJSONBody(e, &doc); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}
		if errs := services.ValidateContacts(doc.Contacts); len(errs) > 0 {
			return ValidationErrorJSON(e, errs)
		}

		saved, err := services.UpdateProposal(app, id, doc)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_update", err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

// HandleProposalDelete removes a draft or cancelled proposal.
func HandleProposalDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		if err := services.DeleteProposal(app, id); err != nil {
			return ServiceErrorJSON(e, "proposal_delete", err)
		}
		return e.JSON(http.StatusOK, map[string]string{"id": id})
	}
}
