package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// feeCalculationRequest accepts a tagged calculation
// ({ "kind": "formula", "batch": {...} }) or a bare batch from older clients
// ({ "type": ..., "results": [...] }), whose kind is inferred.
type feeCalculationRequest struct {
	Kind  services.FeeKind   `json:"kind"`
	Batch *services.FeeBatch `json:"batch"`
	services.FeeBatch
	Version int `json:"version"`
}

func (r feeCalculationRequest) calculation() services.FeeCalculation {
	batch := r.FeeBatch
	if r.Batch != nil {
		batch = *r.Batch
	}
	kind := r.Kind
	if kind == "" {
		kind = services.InferFeeKind(batch)
	}
	return services.FeeCalculation{Kind: kind, Batch: batch}
}

// HandleProposalCalculations merges a fee batch into the stored proposal and
// saves it. The request version, when given, is checked like a PUT.
func HandleProposalCalculations(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorJSON(e, http.StatusBadRequest, "Missing proposal ID")
		}

		var req feeCalculationRequest
		if err := decodeJSONBody(e, &req); err != nil {
			return ErrorJSON(e, http.StatusBadRequest, err.Error())
		}
		calc := req.calculation()
		if calc.Batch.Results == nil {
			return ErrorJSON(e, http.StatusBadRequest, "Batch results are required")
		}

		doc, err := services.LoadProposal(app, id)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_calculations", err)
		}
		if req.Version != 0 && req.Version != doc.Version {
			return ServiceErrorJSON(e, "proposal_calculations", services.ErrVersionConflict)
		}

		merged, err := services.ApplyFeeCalculation(doc, calc, time.Now().UTC())
		if err != nil {
			return ServiceErrorJSON(e, "proposal_calculations", err)
		}

		saved, err := services.UpdateProposal(app, id, merged)
		if err != nil {
			return ServiceErrorJSON(e, "proposal_calculations", err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}
