package api

import (
	"context"
	"fmt"
)

// Health is the backend's self-report.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	CacheSize int    `json:"cache_size"`
}

// Healthy reports whether the backend can reach its database.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// Health checks backend connectivity.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.get(ctx, "/api/health", &h); err != nil {
		return Health{}, fmt.Errorf("failed to check health: %w", err)
	}
	return h, nil
}

// ValidatePassword asks the server whether the contestant password unlocks
// the landing page. A wrong password is a valid=false answer, not an error.
func (c *Client) ValidatePassword(ctx context.Context, password string) (bool, error) {
	body := map[string]string{"password": password}
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := c.post(ctx, "/api/validate-password", body, &resp); err != nil {
		return false, fmt.Errorf("failed to validate password: %w", err)
	}
	return resp.Valid, nil
}

// AdminLogin verifies token against the server. On success the token stays
// attached to the client for subsequent admin calls; on failure any token
// set beforehand is cleared.
func (c *Client) AdminLogin(ctx context.Context, token string) (ActionResult, error) {
	c.SetAdminToken(token)
	var result ActionResult
	if err := c.post(ctx, "/api/admin/login", nil, &result); err != nil {
		c.ClearAdminToken()
		return ActionResult{}, fmt.Errorf("failed to log in: %w", err)
	}
	return result, nil
}
