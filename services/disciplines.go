package services

import (
	"fmt"
	"time"
)

// SetDisciplineActive toggles the active flag of a discipline and stamps who
// changed it. Unknown ids return ErrNotFound.
func SetDisciplineActive(doc Proposal, disciplineID string, active bool, actor string, now time.Time) (Proposal, error) {
	return updateDiscipline(doc, disciplineID, func(d *Discipline) {
		d.Active = active
		d.UpdatedAt = now
		d.UpdatedBy = actor
	})
}

// AppendDisciplineResults appends a batch of results to a discipline. Each
// result is stamped with now and, when unset, the manual source.
func AppendDisciplineResults(doc Proposal, disciplineID string, results []CalculationResult, actor string, now time.Time) (Proposal, error) {
	stamped := make([]CalculationResult, len(results))
	for i, r := range results {
		if r.Source == "" {
			r.Source = SourceManual
		}
		r.Parameters = r.Parameters.Clone()
		r.Timestamp = now
		stamped[i] = r
	}

	return updateDiscipline(doc, disciplineID, func(d *Discipline) {
		d.Results = appendResults(d.Results, stamped)
		d.UpdatedAt = now
		d.UpdatedBy = actor
	})
}

func updateDiscipline(doc Proposal, disciplineID string, fn func(*Discipline)) (Proposal, error) {
	idx := -1
	for i, d := range doc.ProjectData.Disciplines {
		if d.ID == disciplineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return doc, fmt.Errorf("discipline %q: %w", disciplineID, ErrNotFound)
	}

	disciplines := make([]Discipline, len(doc.ProjectData.Disciplines))
	copy(disciplines, doc.ProjectData.Disciplines)
	fn(&disciplines[idx])

	out := doc
	out.ProjectData.Disciplines = disciplines
	return out, nil
}
