// Package admin drives the admin panel: logging in, editing the problem
// set, and operating the contest timer. Every successful mutation is
// announced on the broadcast bus so open contestant tabs refresh at once
// instead of waiting out their poll interval.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/broadcast"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/localstore"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
)

// TokenKey is the session-store key the admin token lives under, mirroring
// the browser's sessionStorage slot.
const TokenKey = "cc.admin.token"

// ErrNotAuthenticated is returned by mutations attempted before Login.
var ErrNotAuthenticated = errors.New("admin not logged in")

// ErrContestUnavailable is returned by contest controls on deployments
// without a contest backend (the static variant).
var ErrContestUnavailable = errors.New("contest controls require the API deployment")

// Backend defines what the admin panel needs from its persistence side.
// The API deployment implements all of it against the server; the static
// deployment implements the problem operations against local files and
// rejects the contest controls.
type Backend interface {
	// Login verifies the password and readies the backend for mutations.
	Login(ctx context.Context, password string) (string, error)
	// Resume re-attaches a previously issued token without a fresh check.
	Resume(token string)

	CreateProblem(ctx context.Context, p problems.Problem) (string, error)
	UpdateProblem(ctx context.Context, p problems.Problem) (string, error)
	DeleteProblem(ctx context.Context, id string) (string, error)

	ScheduleContest(ctx context.Context, countdownMinutes, durationMinutes int) (string, error)
	StartContest(ctx context.Context, durationMinutes int) (string, error)
	StopContest(ctx context.Context) (string, error)
	ResetContest(ctx context.Context) (string, error)
	AddContestTime(ctx context.Context, minutes int) (string, error)
	AddPrecountdownTime(ctx context.Context, minutes int) (string, error)
	SetContestVisibility(ctx context.Context, visible bool) (string, error)
}

// Invalidator drops cached problem data after a mutation. Usually a
// *problems.CachedSource.
type Invalidator interface {
	Invalidate()
}

// Controller is the admin panel's state. Concurrent admin actions follow
// last-write-wins, same as two admins clicking in two browser tabs; the
// server (or file store) is the arbiter.
type Controller struct {
	backend  Backend
	sessions localstore.Store
	bus      broadcast.Bus
	cache    Invalidator
	source   string
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// NewController wires the admin panel. Sessions is the session-scope store
// holding the token; source identifies this tab on the bus; cache may be
// nil when nothing caches problems.
func NewController(backend Backend, sessions localstore.Store, bus broadcast.Bus, source string) *Controller {
	return &Controller{
		backend:  backend,
		sessions: sessions,
		bus:      bus,
		source:   source,
		clock:    clockwork.NewRealClock(),
		logger:   log.With().Str("component", "admin").Logger(),
	}
}

// WithCache registers a cache to invalidate on problem mutations.
func (c *Controller) WithCache(cache Invalidator) *Controller {
	c.cache = cache
	return c
}

// WithClock swaps the wall clock used to stamp broadcast events.
func (c *Controller) WithClock(clock clockwork.Clock) *Controller {
	c.clock = clock
	return c
}

// Login verifies the password and stores the resulting token in the
// session scope, exactly as the browser panel kept it in sessionStorage.
func (c *Controller) Login(ctx context.Context, password string) (string, error) {
	message, err := c.backend.Login(ctx, password)
	if err != nil {
		return "", err
	}
	if err := c.sessions.Set(TokenKey, password); err != nil {
		return "", fmt.Errorf("failed to store admin session: %w", err)
	}
	c.logger.Info().Msg("Admin logged in")
	return message, nil
}

// Logout drops the stored session.
func (c *Controller) Logout() error {
	if err := c.sessions.Delete(TokenKey); err != nil {
		return fmt.Errorf("failed to clear admin session: %w", err)
	}
	return nil
}

// LoggedIn reports whether a session token is stored.
func (c *Controller) LoggedIn() bool {
	_, ok, err := c.sessions.Get(TokenKey)
	return err == nil && ok
}

// RestoreSession re-attaches a stored token, if any. The token is trusted
// locally; a stale one surfaces as an unauthorized error on the first
// mutation, which clears it.
func (c *Controller) RestoreSession() bool {
	token, ok, err := c.sessions.Get(TokenKey)
	if err != nil || !ok {
		return false
	}
	c.backend.Resume(token)
	return true
}

// CreateProblem saves a new problem and announces it.
func (c *Controller) CreateProblem(ctx context.Context, p problems.Problem) (string, error) {
	return c.problemMutation(ctx, broadcast.ActionCreate, func() (string, error) {
		return c.backend.CreateProblem(ctx, p)
	})
}

// UpdateProblem rewrites an existing problem and announces it.
func (c *Controller) UpdateProblem(ctx context.Context, p problems.Problem) (string, error) {
	return c.problemMutation(ctx, broadcast.ActionUpdate, func() (string, error) {
		return c.backend.UpdateProblem(ctx, p)
	})
}

// DeleteProblem removes a problem and announces it.
func (c *Controller) DeleteProblem(ctx context.Context, id string) (string, error) {
	return c.problemMutation(ctx, broadcast.ActionDelete, func() (string, error) {
		return c.backend.DeleteProblem(ctx, id)
	})
}

// ScheduleContest arms the pre-contest countdown.
func (c *Controller) ScheduleContest(ctx context.Context, countdownMinutes, durationMinutes int) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionSchedule, func() (string, error) {
		return c.backend.ScheduleContest(ctx, countdownMinutes, durationMinutes)
	})
}

// StartContest starts the contest immediately.
func (c *Controller) StartContest(ctx context.Context, durationMinutes int) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionStart, func() (string, error) {
		return c.backend.StartContest(ctx, durationMinutes)
	})
}

// StopContest ends the contest immediately.
func (c *Controller) StopContest(ctx context.Context) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionStop, func() (string, error) {
		return c.backend.StopContest(ctx)
	})
}

// ResetContest returns the contest to an unscheduled pending state.
func (c *Controller) ResetContest(ctx context.Context) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionReset, func() (string, error) {
		return c.backend.ResetContest(ctx)
	})
}

// AddContestTime extends a running contest.
func (c *Controller) AddContestTime(ctx context.Context, minutes int) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionAddTime, func() (string, error) {
		return c.backend.AddContestTime(ctx, minutes)
	})
}

// AddPrecountdownTime delays a pending contest's start.
func (c *Controller) AddPrecountdownTime(ctx context.Context, minutes int) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionAddPrecountdown, func() (string, error) {
		return c.backend.AddPrecountdownTime(ctx, minutes)
	})
}

// SetContestVisibility shows or hides the problem set for contestants.
func (c *Controller) SetContestVisibility(ctx context.Context, visible bool) (string, error) {
	return c.contestMutation(ctx, broadcast.ActionVisibility, func() (string, error) {
		return c.backend.SetContestVisibility(ctx, visible)
	})
}

func (c *Controller) problemMutation(ctx context.Context, action string, op func() (string, error)) (string, error) {
	message, err := c.guarded(action, op)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		c.cache.Invalidate()
	}
	c.announce(ctx, broadcast.TypeProblemsUpdate, action)
	return message, nil
}

func (c *Controller) contestMutation(ctx context.Context, action string, op func() (string, error)) (string, error) {
	message, err := c.guarded(action, op)
	if err != nil {
		return "", err
	}
	c.announce(ctx, broadcast.TypeContestUpdate, action)
	return message, nil
}

// guarded runs op behind the login check. An unauthorized answer from the
// server means the stored token went stale, so the session is dropped.
func (c *Controller) guarded(action string, op func() (string, error)) (string, error) {
	if !c.LoggedIn() {
		return "", ErrNotAuthenticated
	}
	message, err := op()
	if err != nil {
		if isUnauthorized(err) {
			c.logger.Warn().Str("action", action).Msg("Admin token rejected, clearing session")
			if derr := c.Logout(); derr != nil {
				c.logger.Warn().Err(derr).Msg("Failed to clear stale session")
			}
		}
		return "", err
	}
	c.logger.Info().Str("action", action).Str("message", message).Msg("Admin action applied")
	return message, nil
}

// announce publishes after the mutation succeeded. Failed mutations stay
// silent so sibling tabs never refresh into unchanged state.
func (c *Controller) announce(ctx context.Context, typ broadcast.Type, action string) {
	ev := broadcast.New(typ, action, c.source, c.clock.Now())
	if err := c.bus.Publish(ctx, ev); err != nil {
		c.logger.Warn().Err(err).Str("action", action).Msg("Failed to broadcast admin action")
	}
}
