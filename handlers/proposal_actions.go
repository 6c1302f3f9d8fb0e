package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// HandleProposalAction applies one workflow action (review, approve, ...).
// The body is { status_id?, version?, ...extra }; extra keys are kept as
// status details. A stale version is rejected with 409.
func HandleProposalAction(app *pocketbase.PocketBase, action string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		body := map[string]any{}
		if err := decodeJSONBody(e, &body); err != nil && !isEmptyBody(err) {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}

		statusID, _ := body["status_id"].(string)
		delete(body, "status_id")
		version, _ := body["version"].(float64)
		delete(body, "version")

		saved, err := services.TransitionProposal(app, id, action, statusID, int(version), body)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_"+action, err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
