package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// HandleProposalContactSearch returns the contacts of a proposal matching
// every token of the q query parameter.
func HandleProposalContactSearch(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		doc, err := services.LoadProposal(app, id)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_contacts", err)
		}

		query := e.Request.URL.Query().Get("q")
		return e.JSON(http.StatusOK, map[string]any{
			"query":    query,
			"contacts": services.SearchContacts(doc.Contacts, query),
		})
	}
}
