package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/collections"
	"feeproposals/handlers"
	"feeproposals/services"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.EnsureProposalStatuses(app); err != nil {
			log.Printf("Warning: proposal statuses failed: %v", err)
		}
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateProposalDefaults(app); err != nil {
			log.Printf("Warning: proposal migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Reference data ───────────────────────────────────────
		se.Router.GET("/api/proposal-statuses", handlers.HandleProposalStatusList(app))
		se.Router.GET("/api/projects/{projectId}/proposals", handlers.HandleProjectProposalList(app))

		// ── Proposal workflow actions ────────────────────────────
		for _, action := range services.ProposalActions {
			se.Router.POST("/api/proposals/{id}/"+action, handlers.HandleProposalAction(app, action))
		}

		// ── Proposal sub-resources ───────────────────────────────
		se.Router.POST("/api/proposals/{id}/calculations", handlers.HandleProposalCalculations(app))
		se.Router.GET("/api/proposals/{id}/contacts", handlers.HandleProposalContactSearch(app))
		se.Router.GET("/api/proposals/{id}/export/excel", handlers.HandleProposalExportExcel(app))

		// ── Proposal document ────────────────────────────────────
		se.Router.GET("/api/proposals/{id}", handlers.HandleProposalGet(app))
		se.Router.POST("/api/proposals/{id}", handlers.HandleProposalCreate(app))
		se.Router.PUT("/api/proposals/{id}", handlers.HandleProposalUpdate(app))
		se.Router.DELETE("/api/proposals/{id}", handlers.HandleProposalDelete(app))

		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/_/")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
