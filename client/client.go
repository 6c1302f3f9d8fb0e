// Package client talks to the proposals API and owns an in-memory proposal
// document for editing.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"feeproposals/services"
)

// NewProposalID is the id under which unsaved proposals are created.
const NewProposalID = "new"

// APIError is a non-2xx response from the proposals API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proposals api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("proposals api: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match conflicts and missing proposals with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusConflict:
		return services.ErrVersionConflict
	case http.StatusNotFound:
		return services.ErrNotFound
	case http.StatusBadRequest:
		if strings.Contains(e.Message, services.ErrInvalidTransition.Error()) {
			return services.ErrInvalidTransition
		}
	}
	return nil
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Client is a typed client for the proposals resource.
type Client struct {
	http   *resty.Client
	actor  string
	logger *zap.Logger
}

// New creates a client for the API described by cfg.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		actor:  cfg.Actor,
		logger: logger,
	}
}

// GetProposal loads the whole proposal document.
func (c *Client) GetProposal(ctx context.Context, id string) (services.Proposal, error) {
	var out services.Proposal
	err := c.do(ctx, http.MethodGet, id, "", nil, &out)
	return out, err
}

// CreateProposal posts an unsaved document and returns the stored one.
func (c *Client) CreateProposal(ctx context.Context, doc services.Proposal) (services.Proposal, error) {
	if doc.CreatedBy == "" {
		doc.CreatedBy = c.actor
	}
	var out services.Proposal
	err := c.do(ctx, http.MethodPost, NewProposalID, "", doc, &out)
	return out, err
}

// UpdateProposal puts the whole document. A stale doc.Version fails with an
// error matching services.ErrVersionConflict.
func (c *Client) UpdateProposal(ctx context.Context, doc services.Proposal) (services.Proposal, error) {
	if doc.ID == "" {
		return services.Proposal{}, fmt.Errorf("update proposal: missing id")
	}
	if c.actor != "" {
		doc.UpdatedBy = c.actor
	}
	var out services.Proposal
	err := c.do(ctx, http.MethodPut, doc.ID, "", doc, &out)
	return out, err
}

// DeleteProposal removes a proposal on the server.
func (c *Client) DeleteProposal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, id, "", nil, nil)
}

// Transition applies a workflow action such as "review" or "client-approve".
// A "version" entry in extra makes the server reject the action with a
// version conflict when the proposal changed since that version.
func (c *Client) Transition(ctx context.Context, id, action, statusID string, extra map[string]any) (services.Proposal, error) {
	body := make(map[string]any, len(extra)+2)
	for k, v := range extra {
		body[k] = v
	}
	if statusID != "" {
		body["status_id"] = statusID
	}
	if c.actor != "" {
		if _, ok := body["updated_by"]; !ok {
			body["updated_by"] = c.actor
		}
	}

	var out services.Proposal
	err := c.do(ctx, http.MethodPost, id, "/"+action, body, &out)
	return out, err
}

// SubmitCalculation asks the server to merge and persist a fee batch.
func (c *Client) SubmitCalculation(ctx context.Context, id string, calc services.FeeCalculation, version int) (services.Proposal, error) {
	body := map[string]any{"kind": calc.Kind, "batch": calc.Batch, "version": version}
	var out services.Proposal
	err := c.do(ctx, http.MethodPost, id, "/calculations", body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, id, suffix string, body, result any) error {
	var apiErr errorBody
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, "/api/proposals/{id}"+suffix)
	if err != nil {
		c.logger.Error("Proposals API call failed",
			zap.String("method", method),
			zap.String("proposal_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("%s proposal %s: %w", method, id, err)
	}

	if resp.IsError() {
		e := &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error, Fields: apiErr.Fields}
		c.logger.Warn("Proposals API returned error",
			zap.String("method", method),
			zap.String("proposal_id", id),
			zap.Int("status_code", e.StatusCode),
			zap.String("error", e.Message),
		)
		return e
	}

	c.logger.Debug("Proposals API call succeeded",
		zap.String("method", method),
		zap.String("proposal_id", id),
		zap.Int("status_code", resp.StatusCode()),
	)
	return nil
}
