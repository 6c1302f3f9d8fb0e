package services

// Clone returns a deep copy of the proposal. Nil collections stay nil, so a
// clone compares equal to its source with reflect.DeepEqual.
func (p Proposal) Clone() Proposal {
	out := p
	out.StatusDetails = cloneAnyMap(p.StatusDetails)
	out.Contacts = cloneContacts(p.Contacts)
	out.ProjectData = p.ProjectData.Clone()
	return out
}

// Clone returns a deep copy of the project data.
func (d ProjectData) Clone() ProjectData {
	out := d

	if d.Structures != nil {
		out.Structures = make([]Structure, len(d.Structures))
		for i, s := range d.Structures {
			s.Parameters = cloneParams(s.Parameters)
			if s.Levels != nil {
				levels := make([]Level, len(s.Levels))
				for j, l := range s.Levels {
					l.Parameters = cloneParams(l.Parameters)
					if l.Spaces != nil {
						spaces := make([]Space, len(l.Spaces))
						for k, sp := range l.Spaces {
							sp.Parameters = cloneParams(sp.Parameters)
							spaces[k] = sp
						}
						l.Spaces = spaces
					}
					levels[j] = l
				}
				s.Levels = levels
			}
			out.Structures[i] = s
		}
	}

	if d.Disciplines != nil {
		out.Disciplines = make([]Discipline, len(d.Disciplines))
		for i, disc := range d.Disciplines {
			disc.Parameters = cloneParams(disc.Parameters)
			disc.Results = cloneResults(disc.Results)
			out.Disciplines[i] = disc
		}
	}

	if d.Services != nil {
		out.Services = make([]Service, len(d.Services))
		for i, svc := range d.Services {
			svc.Parameters = cloneParams(svc.Parameters)
			out.Services[i] = svc
		}
	}

	out.Calculations.Design = d.Calculations.Design.clone()
	out.Calculations.Construction = d.Calculations.Construction.clone()

	if d.CalculationHistory != nil {
		out.CalculationHistory = make([]HistoryEntry, len(d.CalculationHistory))
		for i, h := range d.CalculationHistory {
			h.Calculations = cloneResults(h.Calculations)
			h.Parameters = cloneParams(h.Parameters)
			out.CalculationHistory[i] = h
		}
	}

	out.Costs.Design.Breakdown = cloneBreakdown(d.Costs.Design.Breakdown)
	out.Costs.Construction.Breakdown = cloneBreakdown(d.Costs.Construction.Breakdown)
	return out
}

func (pc PhaseCalculations) clone() PhaseCalculations {
	pc.Structures = cloneResults(pc.Structures)
	pc.Levels = cloneResults(pc.Levels)
	pc.Spaces = cloneResults(pc.Spaces)
	return pc
}

// Clone returns a copy of the contact with its own details map.
func (c Contact) Clone() Contact {
	c.Details = cloneAnyMap(c.Details)
	return c
}

func cloneContacts(contacts []Contact) []Contact {
	if contacts == nil {
		return nil
	}
	out := make([]Contact, len(contacts))
	for i, c := range contacts {
		out[i] = c.Clone()
	}
	return out
}

func cloneResults(results []CalculationResult) []CalculationResult {
	if results == nil {
		return nil
	}
	out := make([]CalculationResult, len(results))
	for i, r := range results {
		r.Parameters = cloneParams(r.Parameters)
		out[i] = r
	}
	return out
}

// cloneParams copies a parameter bag. Values are scalars, so one level is
// enough.
func cloneParams(p Params) Params {
	if p == nil {
		return nil
	}
	return p.Clone()
}

func cloneBreakdown(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneAnyMap copies free-form JSON objects, descending into nested objects
// and arrays.
func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAnyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	default:
		return v
	}
}
