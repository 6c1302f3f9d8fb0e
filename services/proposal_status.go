package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrVersionConflict   = errors.New("proposal was modified by someone else")
)

// Proposal status codes, as stored in the proposal_statuses collection.
const (
	StatusDraft          = "draft"
	StatusInReview       = "in_review"
	StatusApproved       = "approved"
	StatusRejected       = "rejected"
	StatusPublished      = "published"
	StatusClientApproved = "client_approved"
	StatusClientRejected = "client_rejected"
	StatusOnHold         = "on_hold"
	StatusCancelled      = "cancelled"
)

// StatusDef describes a workflow status and its display label.
type StatusDef struct {
	Code  string
	Label string
}

// ProposalStatuses is the ordered list of workflow statuses.
var ProposalStatuses = []StatusDef{
	{Code: StatusDraft, Label: "Draft"},
	{Code: StatusInReview, Label: "In Review"},
	{Code: StatusApproved, Label: "Approved"},
	{Code: StatusRejected, Label: "Rejected"},
	{Code: StatusPublished, Label: "Published"},
	{Code: StatusClientApproved, Label: "Client Approved"},
	{Code: StatusClientRejected, Label: "Client Rejected"},
	{Code: StatusOnHold, Label: "On Hold"},
	{Code: StatusCancelled, Label: "Cancelled"},
}

// actionTargets maps a workflow action (URL segment) to the status it moves a
// proposal into.
var actionTargets = map[string]string{
	"review":         StatusInReview,
	"approve":        StatusApproved,
	"reject":         StatusRejected,
	"publish":        StatusPublished,
	"client-approve": StatusClientApproved,
	"client-reject":  StatusClientRejected,
	"hold":           StatusOnHold,
	"cancel":         StatusCancelled,
	"resume":         StatusDraft,
}

// ProposalActions lists the workflow actions in route registration order.
var ProposalActions = []string{
	"review", "approve", "reject", "publish",
	"client-approve", "client-reject", "hold", "cancel", "resume",
}

// ActionTargetStatus returns the status code an action moves a proposal into.
func ActionTargetStatus(action string) (string, bool) {
	s, ok := actionTargets[action]
	return s, ok
}

// IsTerminalStatus reports whether no further workflow action is possible.
func IsTerminalStatus(status string) bool {
	return status == StatusCancelled || status == StatusClientApproved
}

// IsValidStatusTransition returns true when moving from currentStatus to
// newStatus is allowed.
// Valid transitions:
//   - draft, rejected, client_rejected, on_hold → in_review
//   - on_hold → draft
//   - in_review → approved, rejected
//   - approved → published
//   - published → client_approved, client_rejected
//   - any non-terminal (except on_hold) → on_hold
//   - any non-terminal → cancelled
func IsValidStatusTransition(currentStatus, newStatus string) bool {
	if IsTerminalStatus(currentStatus) {
		return false
	}
	switch newStatus {
	case StatusCancelled:
		return true
	case StatusOnHold:
		return currentStatus != StatusOnHold
	}
	switch currentStatus {
	case StatusDraft, StatusRejected, StatusClientRejected:
		return newStatus == StatusInReview
	case StatusOnHold:
		return newStatus == StatusInReview || newStatus == StatusDraft
	case StatusInReview:
		return newStatus == StatusApproved || newStatus == StatusRejected
	case StatusApproved:
		return newStatus == StatusPublished
	case StatusPublished:
		return newStatus == StatusClientApproved || newStatus == StatusClientRejected
	default:
		return false
	}
}

// ResolveTransition returns the status an action moves a proposal with the
// given current status into, or ErrInvalidTransition.
func ResolveTransition(currentStatus, action string) (string, error) {
	target, ok := ActionTargetStatus(action)
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if !IsValidStatusTransition(currentStatus, target) {
		return "", fmt.Errorf("%w: cannot %s a %s proposal", ErrInvalidTransition, action, currentStatus)
	}
	return target, nil
}
