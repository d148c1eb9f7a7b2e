package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/localstore"
)

// GateKey is the session-store flag set once the contestant password was
// accepted, the counterpart of the browser's sessionStorage auth flag.
const GateKey = "cc.gate.ok"

// PasswordChecker verifies the contestant password. The API deployment asks
// the server; the static deployment compares against a configured hash.
type PasswordChecker interface {
	ValidatePassword(ctx context.Context, password string) (bool, error)
}

// HashChecker verifies passwords against a bcrypt hash, for deployments
// with no backend to ask.
type HashChecker struct {
	hash []byte
}

// NewHashChecker wraps a hash produced by bcrypt.GenerateFromPassword.
func NewHashChecker(hash string) HashChecker {
	return HashChecker{hash: []byte(hash)}
}

// ValidatePassword reports whether password matches the configured hash.
// A mismatch is a false answer; only a malformed hash is an error.
func (h HashChecker) ValidatePassword(_ context.Context, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(h.hash, []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check password hash: %w", err)
}

// Gate is the landing page's password prompt. The unlocked flag lives in
// the session store, so a fresh page object over the same session skips the
// prompt while a new session starts locked.
type Gate struct {
	checker  PasswordChecker
	sessions localstore.Store
	logger   zerolog.Logger
}

// NewGate builds a gate over the given session scope.
func NewGate(checker PasswordChecker, sessions localstore.Store) *Gate {
	return &Gate{
		checker:  checker,
		sessions: sessions,
		logger:   log.With().Str("component", "gate").Logger(),
	}
}

// Unlocked reports whether this session already passed the gate.
func (g *Gate) Unlocked() bool {
	_, ok, err := g.sessions.Get(GateKey)
	return err == nil && ok
}

// Unlock checks the password and, when it is right, persists the session
// flag. A wrong password is (false, nil); only transport or storage
// trouble is an error.
func (g *Gate) Unlock(ctx context.Context, password string) (bool, error) {
	ok, err := g.checker.ValidatePassword(ctx, password)
	if err != nil {
		return false, err
	}
	if !ok {
		g.logger.Debug().Msg("Password rejected")
		return false, nil
	}
	if err := g.sessions.Set(GateKey, "1"); err != nil {
		return false, fmt.Errorf("failed to store gate flag: %w", err)
	}
	g.logger.Info().Msg("Gate unlocked")
	return true, nil
}

// Lock clears the session flag.
func (g *Gate) Lock() error {
	if err := g.sessions.Delete(GateKey); err != nil {
		return fmt.Errorf("failed to clear gate flag: %w", err)
	}
	return nil
}
