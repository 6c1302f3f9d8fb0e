package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"

	"feeproposals/services"
)

// MigrateProposalDefaults backfills proposals created before versioning and
// status tracking: a missing version becomes 1, a missing revision becomes 1
// and a missing status becomes draft. Safe to call on every startup -- returns
// early if nothing to migrate.
func MigrateProposalDefaults(app *pocketbase.PocketBase) error {
	proposalsCol, err := app.FindCollectionByNameOrId("proposals")
	if err != nil {
		return fmt.Errorf("migrate: could not find proposals collection: %w", err)
	}

	stale, err := app.FindRecordsByFilter(
		proposalsCol,
		"version = 0 || revision_number = 0 || status = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query proposals: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	draft, err := services.FindStatusByCode(app, services.StatusDraft)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Printf("migrate: found %d proposal(s) missing defaults -- backfilling...\n", len(stale))

	for _, record := range stale {
		if record.GetInt("version") == 0 {
			record.Set("version", 1)
		}
		if record.GetInt("revision_number") == 0 {
			record.Set("revision_number", 1)
		}
		if record.GetString("status") == "" {
			record.Set("status", draft.Id)
		}
		if err := app.Save(record); err != nil {
			log.Printf("migrate: failed to backfill proposal %s: %v\n", record.Id, err)
			continue
		}
	}

	log.Println("migrate: proposal defaults migration complete.")
	return nil
}
