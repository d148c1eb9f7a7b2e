package admin

import (
	"context"
	"errors"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/api"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
)

// APIBackend implements Backend against the contest server. The token is
// the admin password itself, carried on the X-Admin-Token header; the
// server is the only authority on it.
type APIBackend struct {
	client *api.Client
}

// NewAPIBackend wraps the shared API client. The same client instance the
// watcher polls through can be used; admin calls just add the token header.
func NewAPIBackend(client *api.Client) *APIBackend {
	return &APIBackend{client: client}
}

func (b *APIBackend) Login(ctx context.Context, password string) (string, error) {
	result, err := b.client.AdminLogin(ctx, password)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) Resume(token string) {
	b.client.SetAdminToken(token)
}

func (b *APIBackend) CreateProblem(ctx context.Context, p problems.Problem) (string, error) {
	result, err := b.client.CreateProblem(ctx, p)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) UpdateProblem(ctx context.Context, p problems.Problem) (string, error) {
	result, err := b.client.UpdateProblem(ctx, p)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) DeleteProblem(ctx context.Context, id string) (string, error) {
	result, err := b.client.DeleteProblem(ctx, id)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) ScheduleContest(ctx context.Context, countdownMinutes, durationMinutes int) (string, error) {
	result, err := b.client.ScheduleContest(ctx, countdownMinutes, durationMinutes)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) StartContest(ctx context.Context, durationMinutes int) (string, error) {
	result, err := b.client.StartContest(ctx, durationMinutes)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) StopContest(ctx context.Context) (string, error) {
	result, err := b.client.StopContest(ctx)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) ResetContest(ctx context.Context) (string, error) {
	result, err := b.client.ResetContest(ctx)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) AddContestTime(ctx context.Context, minutes int) (string, error) {
	result, err := b.client.AddContestTime(ctx, minutes)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) AddPrecountdownTime(ctx context.Context, minutes int) (string, error) {
	result, err := b.client.AddPrecountdownTime(ctx, minutes)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

func (b *APIBackend) SetContestVisibility(ctx context.Context, visible bool) (string, error) {
	result, err := b.client.SetContestVisibility(ctx, visible)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

var _ Backend = (*APIBackend)(nil)

// isUnauthorized unwraps to the API's 401 answer.
func isUnauthorized(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
