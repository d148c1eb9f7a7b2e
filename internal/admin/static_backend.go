package admin

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
)

// ErrBadPassword is returned when the admin password does not match the
// configured hash.
var ErrBadPassword = errors.New("invalid admin password")

// StaticBackend implements Backend for the static deployment: problems are
// files in a local directory and the password is checked against a bcrypt
// hash from configuration. There is no contest server, so every contest
// control is rejected.
type StaticBackend struct {
	store        *problems.DirStore
	passwordHash string
}

// NewStaticBackend wires the local problem directory and the bcrypt hash
// of the admin password.
func NewStaticBackend(store *problems.DirStore, passwordHash string) *StaticBackend {
	return &StaticBackend{store: store, passwordHash: passwordHash}
}

func (b *StaticBackend) Login(_ context.Context, password string) (string, error) {
	if bcrypt.CompareHashAndPassword([]byte(b.passwordHash), []byte(password)) != nil {
		return "", ErrBadPassword
	}
	return "Login successful", nil
}

// Resume accepts the stored token as-is; the login already proved it and
// local files need no per-request credential.
func (b *StaticBackend) Resume(string) {}

// The mutation messages mirror the API server's so the panel reads the
// same in both deployments.

func (b *StaticBackend) CreateProblem(ctx context.Context, p problems.Problem) (string, error) {
	if err := b.store.PutProblem(ctx, p); err != nil {
		return "", err
	}
	return "Problem added successfully", nil
}

func (b *StaticBackend) UpdateProblem(ctx context.Context, p problems.Problem) (string, error) {
	if err := b.store.PutProblem(ctx, p); err != nil {
		return "", err
	}
	return "Problem updated successfully", nil
}

func (b *StaticBackend) DeleteProblem(ctx context.Context, id string) (string, error) {
	if err := b.store.DeleteProblem(ctx, id); err != nil {
		return "", err
	}
	return "Problem deleted successfully", nil
}

func (b *StaticBackend) ScheduleContest(context.Context, int, int) (string, error) {
	return "", ErrContestUnavailable
}

func (b *StaticBackend) StartContest(context.Context, int) (string, error) {
	return "", ErrContestUnavailable
}

func (b *StaticBackend) StopContest(context.Context) (string, error) {
	return "", ErrContestUnavailable
}

func (b *StaticBackend) ResetContest(context.Context) (string, error) {
	return "", ErrContestUnavailable
}

func (b *StaticBackend) AddContestTime(context.Context, int) (string, error) {
	return "", ErrContestUnavailable
}

func (b *StaticBackend) AddPrecountdownTime(context.Context, int) (string, error) {
	return "", ErrContestUnavailable
}

func (b *StaticBackend) SetContestVisibility(context.Context, bool) (string, error) {
	return "", ErrContestUnavailable
}

var _ Backend = (*StaticBackend)(nil)
