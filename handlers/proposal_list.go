package handlers

import (
	"log"
	"net/http"
	"sort"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// HandleProjectProposalList lists the proposals of a project.
func HandleProjectProposalList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")

		rows, err := services.ListProjectProposals(app, projectID)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_list", err)
		}
		return e.JSON(http.StatusOK, map[string]any{"items": rows})
	}
}

type statusItem struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

// HandleProposalStatusList lists the workflow statuses in display order.
func HandleProposalStatusList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("proposal_statuses")
		if err != nil {
			log.Printf("proposal_statuses: could not list statuses: %v", err)
			return ErrorJSON(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]statusItem, 0, len(records))
		for _, rec := range records {
			items = append(items, statusItem{
				ID:        rec.Id,
				Code:      rec.GetString("code"),
				Label:     rec.GetString("label"),
				SortOrder: rec.GetInt("sort_order"),
			})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
		return e.JSON(http.StatusOK, map[string]any{"items": items})
	}
}
