package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownFeeKind = errors.New("unknown fee calculation kind")
	ErrInvalidPhase   = errors.New("invalid calculation phase")
	ErrInvalidParam   = errors.New("invalid calculation parameter")
)

// FeeKind discriminates the two producers of fee batches.
type FeeKind string

const (
	FeeKindFixed   FeeKind = "fixed"
	FeeKindFormula FeeKind = "formula"
)

// flexFeesTag marks formula results and history entries.
const flexFeesTag = "flexfees"

// FeeBatch is a set of newly computed fee values for one phase.
type FeeBatch struct {
	Type       Phase               `json:"type"`
	Results    []CalculationResult `json:"results"`
	Parameters Params              `json:"parameters,omitempty"`
}

// FeeCalculation is a fee batch tagged with the producer that computed it.
type FeeCalculation struct {
	Kind  FeeKind  `json:"kind"`
	Batch FeeBatch `json:"batch"`
}

// InferFeeKind classifies an untagged batch the way older fee-calculation
// clients expect: a batch whose first result carries an "hours" parameter is
// a formula batch, anything else is a fixed-fee batch.
func InferFeeKind(batch FeeBatch) FeeKind {
	if len(batch.Results) > 0 && batch.Results[0].Parameters.Has("hours") {
		return FeeKindFormula
	}
	return FeeKindFixed
}

// ApplyFeeCalculation validates calc and merges its batch into doc through the
// merge function matching calc.Kind.
func ApplyFeeCalculation(doc Proposal, calc FeeCalculation, now time.Time) (Proposal, error) {
	if !calc.Batch.Type.Valid() {
		return doc, fmt.Errorf("%w: %q", ErrInvalidPhase, calc.Batch.Type)
	}
	for i, r := range calc.Batch.Results {
		if err := r.Parameters.Validate(); err != nil {
			return doc, fmt.Errorf("result %d: %w", i, err)
		}
	}

	switch calc.Kind {
	case FeeKindFixed:
		return MergeFixedFeeBatch(doc, calc.Batch, now), nil
	case FeeKindFormula:
		return MergeFormulaBatch(doc, calc.Batch, now), nil
	default:
		return doc, fmt.Errorf("%w: %q", ErrUnknownFeeKind, calc.Kind)
	}
}

// MergeFixedFeeBatch stamps batch results as fixed-fee values, appends them to
// the itemized collections of the batch phase and records the batch in the
// calculation history. doc is not modified.
func MergeFixedFeeBatch(doc Proposal, batch FeeBatch, now time.Time) Proposal {
	stamped := stampResults(batch, SourceFixedFees, nil, now)
	return mergeStamped(doc, HistoryEntry{
		Type:         SourceFixedFees,
		Phase:        batch.Type,
		Calculations: stamped,
		Parameters:   batch.Parameters.Clone(),
		Timestamp:    now,
	})
}

// MergeFormulaBatch is MergeFixedFeeBatch for formula ("flexfees") batches.
// Every result and the history parameters gain calculation_type=flexfees.
func MergeFormulaBatch(doc Proposal, batch FeeBatch, now time.Time) Proposal {
	tag := Params{"calculation_type": flexFeesTag}
	stamped := stampResults(batch, SourceFormula, tag, now)
	return mergeStamped(doc, HistoryEntry{
		Type:         SourceFormula,
		Phase:        batch.Type,
		Calculations: stamped,
		Parameters:   batch.Parameters.With(tag),
		Timestamp:    now,
	})
}

func stampResults(batch FeeBatch, source CalculationSource, extra Params, now time.Time) []CalculationResult {
	stamped := make([]CalculationResult, len(batch.Results))
	for i, r := range batch.Results {
		r.Parameters = r.Parameters.With(extra)
		r.Timestamp = now
		r.Source = source
		r.Phase = batch.Type
		stamped[i] = r
	}
	return stamped
}

// mergeStamped appends the entry results to their buckets and the entry itself
// to the history. Results with no node reference only appear in the history.
// The history keeps its own copy of every parameter bag.
func mergeStamped(doc Proposal, entry HistoryEntry) Proposal {
	var structures, levels, spaces []CalculationResult
	for _, r := range entry.Calculations {
		switch {
		case r.SpaceID != "":
			spaces = append(spaces, r)
		case r.LevelID != "":
			levels = append(levels, r)
		case r.StructureID != "":
			structures = append(structures, r)
		}
	}

	out := doc
	if pc := out.ProjectData.Calculations.For(entry.Phase); pc != nil {
		pc.Structures = appendResults(pc.Structures, structures)
		pc.Levels = appendResults(pc.Levels, levels)
		pc.Spaces = appendResults(pc.Spaces, spaces)
	}

	history := make([]HistoryEntry, len(doc.ProjectData.CalculationHistory), len(doc.ProjectData.CalculationHistory)+1)
	copy(history, doc.ProjectData.CalculationHistory)
	entry.Calculations = cloneResults(entry.Calculations)
	out.ProjectData.CalculationHistory = append(history, entry)
	return out
}

// appendResults returns a new slice so the caller's backing array is never
// written through.
func appendResults(existing, added []CalculationResult) []CalculationResult {
	out := make([]CalculationResult, 0, len(existing)+len(added))
	out = append(out, existing...)
	return append(out, added...)
}
