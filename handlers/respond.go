package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"feeproposals/services"
)

// maxBodyBytes bounds request bodies; proposals are sent whole.
const maxBodyBytes = 16 << 20

// ErrorJSON writes the { "error": message } body used by every API failure.
func ErrorJSON(e *core.RequestEvent, statusCode int, message string) error {
	return e.JSON(statusCode, map[string]string{"error": message})
}

// ValidationErrorJSON writes a 422 with the per-field messages next to the
// summary error.
func ValidationErrorJSON(e *core.RequestEvent, fields map[string]string) error {
	return e.JSON(http.StatusUnprocessableEntity, map[string]any{
		"error":  "Please fix the errors below",
		"fields": fields,
	})
}

// ServiceErrorJSON maps a services error onto a status code and writes it.
// Unexpected errors are logged and reported generically.
func ServiceErrorJSON(e *core.RequestEvent, scope string, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return ErrorJSON(e, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrVersionConflict):
		return ErrorJSON(e, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInvalidPhase),
		errors.Is(err, services.ErrUnknownFeeKind),
		errors.Is(err, services.ErrInvalidParam):
		return ErrorJSON(e, http.StatusBadRequest, err.Error())
	}
	log.Printf("%s: %v", scope, err)
	return ErrorJSON(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// decodeJSONBody decodes the request body into dst.
func decodeJSONBody(e *core.RequestEvent, dst any) error {
	body := http.MaxBytesReader(e.Response, e.Request.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
