package services

// PhaseSummary compares the itemized results of a phase with its authored
// totals. The authored totals are never recomputed from the items.
type PhaseSummary struct {
	Phase          Phase
	StructureTotal float64
	LevelTotal     float64
	SpaceTotal     float64
	ItemizedTotal  float64
	StoredTotal    float64 // calculations.<phase>.total
	CostTotal      float64 // costs.<phase>.total
	Difference     float64 // StoredTotal - ItemizedTotal
	ResultCount    int
}

// InSync reports whether the stored total matches the itemized sum to the cent.
func (s PhaseSummary) InSync() bool {
	d := s.Difference
	if d < 0 {
		d = -d
	}
	return d < 0.005
}

// ProposalSummary holds the per-phase summaries and their grand totals.
type ProposalSummary struct {
	Design            PhaseSummary
	Construction      PhaseSummary
	ItemizedTotal     float64
	StoredTotal       float64
	CostTotal         float64
	ActiveDisciplines int
}

func sumResults(results []CalculationResult) float64 {
	var sum float64
	for _, r := range results {
		sum += r.Value
	}
	return sum
}

// SummarizePhase totals the itemized results of one phase.
func SummarizePhase(doc Proposal, phase Phase) PhaseSummary {
	s := PhaseSummary{Phase: phase}
	pc := doc.ProjectData.Calculations.For(phase)
	if pc == nil {
		return s
	}

	s.StructureTotal = sumResults(pc.Structures)
	s.LevelTotal = sumResults(pc.Levels)
	s.SpaceTotal = sumResults(pc.Spaces)
	s.ItemizedTotal = s.StructureTotal + s.LevelTotal + s.SpaceTotal
	s.StoredTotal = pc.Total
	s.Difference = s.StoredTotal - s.ItemizedTotal
	s.ResultCount = len(pc.Structures) + len(pc.Levels) + len(pc.Spaces)

	switch phase {
	case PhaseDesign:
		s.CostTotal = doc.ProjectData.Costs.Design.Total
	case PhaseConstruction:
		s.CostTotal = doc.ProjectData.Costs.Construction.Total
	}
	return s
}

// SummarizeCalculations reports itemized and authored totals for both phases.
// It does not modify doc.
func SummarizeCalculations(doc Proposal) ProposalSummary {
	summary := ProposalSummary{
		Design:       SummarizePhase(doc, PhaseDesign),
		Construction: SummarizePhase(doc, PhaseConstruction),
	}
	summary.ItemizedTotal = summary.Design.ItemizedTotal + summary.Construction.ItemizedTotal
	summary.StoredTotal = summary.Design.StoredTotal + summary.Construction.StoredTotal
	summary.CostTotal = summary.Design.CostTotal + summary.Construction.CostTotal

	for _, d := range doc.ProjectData.Disciplines {
		if d.Active {
			summary.ActiveDisciplines++
		}
	}
	return summary
}
