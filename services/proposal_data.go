package services

import (
	"fmt"
	"sort"
	"time"
)

// Phase identifies the project stage a cost or calculation applies to.
type Phase string

const (
	PhaseDesign       Phase = "design"
	PhaseConstruction Phase = "construction"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	return p == PhaseDesign || p == PhaseConstruction
}

// CalculationSource tags where a fee value came from.
type CalculationSource string

const (
	SourceFixedFees CalculationSource = "fixedfees"
	SourceManual    CalculationSource = "manual"
	SourceFormula   CalculationSource = "formula"
)

// Params is an open-ended parameter bag. Values are restricted to numbers,
// strings and booleans; see Validate.
type Params map[string]any

// Clone returns a shallow copy of the bag. A nil bag clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of the bag with the entries of extra added on top.
func (p Params) With(extra Params) Params {
	out := p.Clone()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Has reports whether key is present in the bag.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Validate returns an error naming the first key (in sorted order) whose value
// is not a number, string or boolean.
func (p Params) Validate() error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch p[k].(type) {
		case string, bool,
			float64, float32,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64:
		default:
			return fmt.Errorf("%w: %q has unsupported type %T", ErrInvalidParam, k, p[k])
		}
	}
	return nil
}

// Space is the innermost node of the building decomposition.
type Space struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	FloorArea  float64 `json:"floor_area"`
	Parameters Params  `json:"parameters,omitempty"`
}

// Level is a floor of a structure.
type Level struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	FloorArea  float64 `json:"floor_area"`
	Parameters Params  `json:"parameters,omitempty"`
	Spaces     []Space `json:"spaces"`
}

// Structure is a building. Containment runs Structure -> Level -> Space only.
type Structure struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	FloorArea  float64 `json:"floor_area"`
	Parameters Params  `json:"parameters,omitempty"`
	Levels     []Level `json:"levels"`
}

// CalculationResult is a single computed fee value. Results are never edited
// in place; corrections append a new result.
type CalculationResult struct {
	StructureID string            `json:"structure_id,omitempty"`
	LevelID     string            `json:"level_id,omitempty"`
	SpaceID     string            `json:"space_id,omitempty"`
	Phase       Phase             `json:"phase,omitempty"`
	Category    string            `json:"category"`
	Value       float64           `json:"value"`
	Parameters  Params            `json:"parameters,omitempty"`
	Timestamp   time.Time         `json:"timestamp,omitzero"`
	Source      CalculationSource `json:"source,omitempty"`
}

// Discipline is an engineering trade participating in the proposal.
// Disciplines are deactivated, never removed.
type Discipline struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Active     bool                `json:"active"`
	Parameters Params              `json:"parameters,omitempty"`
	Results    []CalculationResult `json:"calculation_results"`
	UpdatedAt  time.Time           `json:"updated_at,omitzero"`
	UpdatedBy  string              `json:"updated_by,omitempty"`
}

// Service is a deliverable offered in a given phase.
type Service struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phase        Phase   `json:"phase"`
	DisciplineID string  `json:"discipline_id,omitempty"`
	Included     bool    `json:"included"`
	Fee          float64 `json:"fee"`
	Parameters   Params  `json:"parameters,omitempty"`
}

// PhaseCalculations holds the itemized results of one phase, bucketed by the
// most specific node they reference, plus the authored total.
type PhaseCalculations struct {
	Structures []CalculationResult `json:"structures"`
	Levels     []CalculationResult `json:"levels"`
	Spaces     []CalculationResult `json:"spaces"`
	Total      float64             `json:"total"`
}

// Calculations groups the per-phase calculation collections.
type Calculations struct {
	Design       PhaseCalculations `json:"design"`
	Construction PhaseCalculations `json:"construction"`
}

// For returns a pointer to the collections of the given phase, or nil for an
// unknown phase.
func (c *Calculations) For(phase Phase) *PhaseCalculations {
	switch phase {
	case PhaseDesign:
		return &c.Design
	case PhaseConstruction:
		return &c.Construction
	}
	return nil
}

// HistoryEntry records one merged batch verbatim.
type HistoryEntry struct {
	Type         CalculationSource   `json:"type"`
	Phase        Phase               `json:"phase"`
	Calculations []CalculationResult `json:"calculations"`
	Parameters   Params              `json:"parameters,omitempty"`
	Timestamp    time.Time           `json:"timestamp,omitzero"`
}

// CostBucket is an authored cost total with an optional breakdown.
type CostBucket struct {
	Total     float64            `json:"total"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// Costs groups the per-phase cost buckets.
type Costs struct {
	Design       CostBucket `json:"design"`
	Construction CostBucket `json:"construction"`
}

// ProjectData is the nested body of a proposal.
type ProjectData struct {
	Structures         []Structure    `json:"structures"`
	Disciplines        []Discipline   `json:"disciplines"`
	Services           []Service      `json:"services"`
	Calculations       Calculations   `json:"calculations"`
	CalculationHistory []HistoryEntry `json:"calculation_history"`
	Costs              Costs          `json:"costs"`
}

// Contact is a person reachable in the context of a proposal.
type Contact struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Role      string         `json:"role,omitempty"`
	Company   string         `json:"company,omitempty"`
	IsPrimary bool           `json:"is_primary"`
	Details   map[string]any `json:"details,omitempty"`
}

// Proposal is the whole fee proposal document as exchanged with the API.
type Proposal struct {
	ID                  string         `json:"id"`
	ProjectID           string         `json:"project_id"`
	ProposalNumber      string         `json:"proposal_number"`
	RevisionNumber      int            `json:"revision_number"`
	IsTemporaryRevision bool           `json:"is_temporary_revision"`
	StatusID            string         `json:"status_id"`
	Status              string         `json:"status,omitempty"`
	StatusDetails       map[string]any `json:"status_details,omitempty"`
	Description         string         `json:"description"`
	CreatedBy           string         `json:"created_by,omitempty"`
	UpdatedBy           string         `json:"updated_by,omitempty"`
	Created             time.Time      `json:"created,omitzero"`
	Updated             time.Time      `json:"updated,omitzero"`
	Contacts            []Contact      `json:"contacts"`
	ProjectData         ProjectData    `json:"project_data"`
	Version             int            `json:"version"`
}

// NewProposal synthesizes the default empty document for a proposal that has
// not been saved yet.
func NewProposal(projectID string) Proposal {
	return Proposal{
		ProjectID:      projectID,
		RevisionNumber: 1,
		Status:         StatusDraft,
		Contacts:       []Contact{},
		ProjectData: ProjectData{
			Structures:  []Structure{},
			Disciplines: []Discipline{},
			Services:    []Service{},
			Calculations: Calculations{
				Design:       emptyPhaseCalculations(),
				Construction: emptyPhaseCalculations(),
			},
			CalculationHistory: []HistoryEntry{},
		},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with arrays rather than nulls.
func (p *Proposal) Normalize() {
	if p.Contacts == nil {
		p.Contacts = []Contact{}
	}
	d := &p.ProjectData
	if d.Structures == nil {
		d.Structures = []Structure{}
	}
	if d.Disciplines == nil {
		d.Disciplines = []Discipline{}
	}
	if d.Services == nil {
		d.Services = []Service{}
	}
	if d.CalculationHistory == nil {
		d.CalculationHistory = []HistoryEntry{}
	}
	for _, phase := range []Phase{PhaseDesign, PhaseConstruction} {
		pc := d.Calculations.For(phase)
		if pc.Structures == nil {
			pc.Structures = []CalculationResult{}
		}
		if pc.Levels == nil {
			pc.Levels = []CalculationResult{}
		}
		if pc.Spaces == nil {
			pc.Spaces = []CalculationResult{}
		}
	}
}

func emptyPhaseCalculations() PhaseCalculations {
	return PhaseCalculations{
		Structures: []CalculationResult{},
		Levels:     []CalculationResult{},
		Spaces:     []CalculationResult{},
	}
}
