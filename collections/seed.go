package collections

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type spaceDef struct {
	id        string
	name      string
	floorArea float64
	use       string
}

type levelDef struct {
	id        string
	name      string
	floorArea float64
	spaces    []spaceDef
}

type structureDef struct {
	id        string
	name      string
	floorArea float64
	levels    []levelDef
}

type disciplineDef struct {
	id         string
	name       string
	ratePerSqm float64
	active     bool
}

// seedStructures describes the demo building used by the sample proposal.
var seedStructures = []structureDef{
	{
		id: "str-main", name: "Main Block", floorArea: 4200,
		levels: []levelDef{
			{
				id: "lvl-ground", name: "Ground Floor", floorArea: 2100,
				spaces: []spaceDef{
					{id: "spc-lobby", name: "Lobby", floorArea: 350, use: "circulation"},
					{id: "spc-retail", name: "Retail Unit", floorArea: 1750, use: "retail"},
				},
			},
			{
				id: "lvl-first", name: "First Floor", floorArea: 2100,
				spaces: []spaceDef{
					{id: "spc-office", name: "Open Office", floorArea: 1900, use: "office"},
					{id: "spc-plant", name: "Plant Room", floorArea: 200, use: "plant"},
				},
			},
		},
	},
}

var seedDisciplines = []disciplineDef{
	{id: "dsc-mech", name: "Mechanical", ratePerSqm: 12.5, active: true},
	{id: "dsc-elec", name: "Electrical", ratePerSqm: 10.0, active: true},
	{id: "dsc-plumb", name: "Plumbing", ratePerSqm: 6.0, active: false},
}

// Seed populates the collections with a demo project and one fee proposal.
// It is safe to call on every startup because it returns early if any
// project records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if projects already exist ──────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	project := core.NewRecord(projectsCol)
	project.Set("name", "Harbour View Mixed Use")
	project.Set("client_name", "Harbour View Developments")
	project.Set("reference_number", "HV-01")
	project.Set("status", "active")
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: could not save project: %w", err)
	}
	log.Printf("seed: created project %q (%s)\n", project.GetString("name"), project.Id)

	now := time.Now().UTC()
	doc := seedProposalDocument(project.Id, now)

	saved, err := services.CreateProposal(app, doc, now)
	if err != nil {
		return fmt.Errorf("seed: could not save proposal: %w", err)
	}
	log.Printf("seed: created proposal %s rev %d (%s)\n", saved.ProposalNumber, saved.RevisionNumber, saved.ID)

	return nil
}

// seedProposalDocument builds the demo document: the building tree, the
// disciplines and services, two contacts and one fixed-fee batch per phase.
func seedProposalDocument(projectID string, now time.Time) services.Proposal {
	doc := services.NewProposal(projectID)
	doc.Description = "MEP engineering services for Harbour View, stages 2-5"
	doc.CreatedBy = "seed"

	for _, s := range seedStructures {
		structure := services.Structure{
			ID:         s.id,
			Name:       s.name,
			FloorArea:  s.floorArea,
			Parameters: services.Params{"storeys": float64(len(s.levels))},
			Levels:     []services.Level{},
		}
		for _, l := range s.levels {
			level := services.Level{
				ID:        l.id,
				Name:      l.name,
				FloorArea: l.floorArea,
				Spaces:    []services.Space{},
			}
			for _, sp := range l.spaces {
				level.Spaces = append(level.Spaces, services.Space{
					ID:         sp.id,
					Name:       sp.name,
					FloorArea:  sp.floorArea,
					Parameters: services.Params{"use": sp.use},
				})
			}
			structure.Levels = append(structure.Levels, level)
		}
		doc.ProjectData.Structures = append(doc.ProjectData.Structures, structure)
	}

	for _, d := range seedDisciplines {
		doc.ProjectData.Disciplines = append(doc.ProjectData.Disciplines, services.Discipline{
			ID:         d.id,
			Name:       d.name,
			Active:     d.active,
			Parameters: services.Params{"rate_per_sqm": d.ratePerSqm},
			Results:    []services.CalculationResult{},
			UpdatedAt:  now,
			UpdatedBy:  "seed",
		})
	}

	doc.ProjectData.Services = []services.Service{
		{ID: "svc-concept", Name: "Concept design", Phase: services.PhaseDesign, DisciplineID: "dsc-mech", Included: true, Fee: 18000},
		{ID: "svc-detailed", Name: "Detailed design", Phase: services.PhaseDesign, DisciplineID: "dsc-elec", Included: true, Fee: 24000},
		{ID: "svc-site", Name: "Site inspections", Phase: services.PhaseConstruction, Included: true, Fee: 9500},
	}

	doc.Contacts, _ = services.AddContact(doc.Contacts, services.Contact{
		Name: "Priya Raman", Email: "priya.raman@harbourview.example", Phone: "+61 2 9000 1000",
		Role: "Development Manager", Company: "Harbour View Developments", IsPrimary: true,
	})
	doc.Contacts, _ = services.AddContact(doc.Contacts, services.Contact{
		Name: "Tom Ellery", Email: "tom.ellery@ellery-arch.example",
		Role: "Architect", Company: "Ellery Architects",
	})

	for _, phase := range []services.Phase{services.PhaseDesign, services.PhaseConstruction} {
		var results []services.CalculationResult
		for _, s := range seedStructures {
			results = append(results, services.CalculationResult{
				StructureID: s.id, Category: "base_fee", Value: s.floorArea * 8,
				Parameters: services.Params{"rate": 8.0},
			})
			for _, l := range s.levels {
				for _, sp := range l.spaces {
					results = append(results, services.CalculationResult{
						StructureID: s.id, LevelID: l.id, SpaceID: sp.id,
						Category: sp.use, Value: sp.floorArea * 2.5,
						Parameters: services.Params{"rate": 2.5},
					})
				}
			}
		}
		doc = services.MergeFixedFeeBatch(doc, services.FeeBatch{
			Type:       phase,
			Results:    results,
			Parameters: services.Params{"table": "standard-2026"},
		}, now)
	}

	design := services.SummarizePhase(doc, services.PhaseDesign)
	construction := services.SummarizePhase(doc, services.PhaseConstruction)
	doc.ProjectData.Calculations.Design.Total = design.ItemizedTotal
	doc.ProjectData.Calculations.Construction.Total = construction.ItemizedTotal
	doc.ProjectData.Costs.Design.Total = 42000
	doc.ProjectData.Costs.Construction.Total = 9500

	return doc
}
