package api

import (
	"context"
	"fmt"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
)

// ScheduleResult extends the usual mutation reply with the computed contest
// window.
type ScheduleResult struct {
	ActionResult
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ContestStatus retrieves the authoritative contest snapshot. Read-only:
// the server performs no transitions here, so remaining_time may reach zero
// while the phase lags until the next last-update poll.
func (c *Client) ContestStatus(ctx context.Context) (contest.Status, error) {
	var status contest.Status
	if err := c.get(ctx, "/api/contest/status", &status); err != nil {
		return contest.Status{}, fmt.Errorf("failed to get contest status: %w", err)
	}
	return status, nil
}

// ContestLastUpdate retrieves the state-change stamp. The server applies
// due phase transitions during this call, which is why the watcher polls it
// rather than the full status.
func (c *Client) ContestLastUpdate(ctx context.Context) (contest.LastUpdate, error) {
	var lu contest.LastUpdate
	if err := c.get(ctx, "/api/contest/last-update", &lu); err != nil {
		return contest.LastUpdate{}, fmt.Errorf("failed to get contest last update: %w", err)
	}
	return lu, nil
}

// ScheduleContest arms a pending contest: the pre-contest countdown runs
// countdownMinutes, then the contest runs durationMinutes. Requires an
// admin token.
func (c *Client) ScheduleContest(ctx context.Context, countdownMinutes, durationMinutes int) (ScheduleResult, error) {
	body := map[string]int{
		"countdown_minutes": countdownMinutes,
		"duration_minutes":  durationMinutes,
	}
	var result ScheduleResult
	if err := c.post(ctx, "/api/admin/contest/schedule", body, &result); err != nil {
		return ScheduleResult{}, fmt.Errorf("failed to schedule contest: %w", err)
	}
	return result, nil
}

// StartContest starts the contest immediately for durationMinutes,
// replacing any scheduled countdown. Requires an admin token.
func (c *Client) StartContest(ctx context.Context, durationMinutes int) (ActionResult, error) {
	body := map[string]int{"duration_minutes": durationMinutes}
	var result ActionResult
	if err := c.post(ctx, "/api/admin/contest/start", body, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to start contest: %w", err)
	}
	return result, nil
}

// StopContest ends the contest immediately. Requires an admin token.
func (c *Client) StopContest(ctx context.Context) (ActionResult, error) {
	var result ActionResult
	if err := c.post(ctx, "/api/admin/contest/stop", nil, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to stop contest: %w", err)
	}
	return result, nil
}

// ResetContest returns the contest to an unscheduled pending state and
// hides it. Requires an admin token.
func (c *Client) ResetContest(ctx context.Context) (ActionResult, error) {
	var result ActionResult
	if err := c.post(ctx, "/api/admin/contest/reset", nil, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to reset contest: %w", err)
	}
	return result, nil
}

// AddContestTime extends a running contest's end time by minutes. The
// server rejects it when no contest is active. Requires an admin token.
func (c *Client) AddContestTime(ctx context.Context, minutes int) (ActionResult, error) {
	body := map[string]int{"minutes": minutes}
	var result ActionResult
	if err := c.post(ctx, "/api/admin/contest/add-time", body, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to add contest time: %w", err)
	}
	return result, nil
}

// AddPrecountdownTime delays a pending contest's start by minutes. The
// server rejects it outside the pre-countdown phase. Requires an admin
// token.
func (c *Client) AddPrecountdownTime(ctx context.Context, minutes int) (ActionResult, error) {
	body := map[string]int{"minutes": minutes}
	var result ActionResult
	if err := c.post(ctx, "/api/admin/contest/add-precountdown-time", body, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to add pre-countdown time: %w", err)
	}
	return result, nil
}

// SetContestVisibility shows or hides the problem set for contestants.
// Requires an admin token.
func (c *Client) SetContestVisibility(ctx context.Context, visible bool) (ActionResult, error) {
	body := map[string]bool{"is_visible": visible}
	var result ActionResult
	if err := c.post(ctx, "/api/admin/contest/visibility", body, &result); err != nil {
		return ActionResult{}, fmt.Errorf("failed to set contest visibility: %w", err)
	}
	return result, nil
}
