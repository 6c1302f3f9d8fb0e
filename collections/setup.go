package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// documentMaxSize bounds the JSON fields that hold whole proposal bodies.
const documentMaxSize = 8 << 20

// Setup programmatically creates/ensures the projects, proposal_statuses and
// proposals collections exist.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "on_hold"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	statuses := ensureCollection(app, "proposal_statuses", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "code", Required: true})
		c.Fields.Add(&core.TextField{Name: "label", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.AddIndex("idx_proposal_statuses_code", true, "code", "")
	})

	ensureCollection(app, "proposals", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "proposal_number", Required: true})
		c.Fields.Add(&core.NumberField{Name: "revision_number", Required: false, OnlyInt: true})
		c.Fields.Add(&core.BoolField{Name: "is_temporary_revision"})
		c.Fields.Add(&core.RelationField{
			Name:         "status",
			Required:     false,
			CollectionId: statuses.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.JSONField{Name: "status_details", MaxSize: documentMaxSize})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "created_by", Required: false})
		c.Fields.Add(&core.TextField{Name: "updated_by", Required: false})
		c.Fields.Add(&core.JSONField{Name: "contacts", MaxSize: documentMaxSize})
		c.Fields.Add(&core.JSONField{Name: "project_data", MaxSize: documentMaxSize})
		c.Fields.Add(&core.NumberField{Name: "version", Required: false, OnlyInt: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_proposals_number_revision", true, "proposal_number, revision_number", "")
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
