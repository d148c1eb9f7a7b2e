package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
)

// ListProblems retrieves the list-view rows, ordered by problem ID.
func (c *Client) ListProblems(ctx context.Context) ([]problems.Summary, error) {
	var list []problems.Summary
	if err := c.get(ctx, "/api/problems", &list); err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	return list, nil
}

// GetProblem retrieves one full statement with its samples. A missing
// problem is reported as problems.ErrNotFound so callers need not inspect
// status codes.
func (c *Client) GetProblem(ctx context.Context, id string) (problems.Problem, error) {
	var p problems.Problem
	if err := c.get(ctx, "/api/problems/"+id, &p); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return problems.Problem{}, fmt.Errorf("problem %q: %w", id, problems.ErrNotFound)
		}
		return problems.Problem{}, fmt.Errorf("failed to get problem %q: %w", id, err)
	}
	return p, nil
}

// CreateProblem inserts or replaces a problem (the server upserts on ID).
// Requires an admin token.
func (c *Client) CreateProblem(ctx context.Context, p problems.Problem) (ActionResult, error) {
	p.Normalize()
	var result ActionResult
	if err := c.post(ctx, "/api/admin/problems", p, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to create problem %q: %w", p.ID, err)
	}
	return result, nil
}

// UpdateProblem rewrites the problem stored under p.ID. Requires an admin
// token.
func (c *Client) UpdateProblem(ctx context.Context, p problems.Problem) (ActionResult, error) {
	p.Normalize()
	var result ActionResult
	if err := c.put(ctx, "/api/admin/problems/"+p.ID, p, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to update problem %q: %w", p.ID, err)
	}
	return result, nil
}

// DeleteProblem removes a problem and its samples. The server tolerates
// absent IDs, so deleting twice succeeds. Requires an admin token.
func (c *Client) DeleteProblem(ctx context.Context, id string) (ActionResult, error) {
	var result ActionResult
	if err := c.delete(ctx, "/api/admin/problems/"+id, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to delete problem %q: %w", id, err)
	}
	return result, nil
}

var _ problems.Source = (*Client)(nil)
