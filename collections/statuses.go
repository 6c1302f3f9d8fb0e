package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// EnsureProposalStatuses creates any workflow status record that is missing
// and keeps labels and sort order in sync with services.ProposalStatuses.
// Safe to call on every startup.
func EnsureProposalStatuses(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("proposal_statuses")
	if err != nil {
		return fmt.Errorf("statuses: could not find proposal_statuses collection: %w", err)
	}

	for i, def := range services.ProposalStatuses {
		record, err := app.FindFirstRecordByData(col, "code", def.Code)
		if err != nil {
			record = core.NewRecord(col)
			record.Set("code", def.Code)
		} else if record.GetString("label") == def.Label && record.GetInt("sort_order") == i+1 {
			continue
		}

		record.Set("label", def.Label)
		record.Set("sort_order", i+1)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("statuses: could not save status %q: %w", def.Code, err)
		}
		log.Printf("statuses: ensured status %q (%s)\n", def.Code, record.Id)
	}

	return nil
}
