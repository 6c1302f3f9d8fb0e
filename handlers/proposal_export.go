package handlers

import (
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

// HandleProposalExportExcel streams the calculation workbook of a proposal.
func HandleProposalExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		doc, err := services.LoadProposal(app, id)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_export", err)
		}

		data, err := services.GenerateProposalExcel(doc)
		if err != nil {
			log.Printf("proposal_export: generate excel for %s: %v", id, err)
			return ErrorJSON(e, http.StatusInternalServerError, "Failed to generate export")
		}

		name := doc.ProposalNumber
		if name == "" {
			name = doc.ID
		}
		filename := fmt.Sprintf("%s_rev%d.xlsx", unsafeFilenameChars.ReplaceAllString(name, "_"), doc.RevisionNumber)

		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		return e.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}
