package page

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/localstore"
)

type fakeChecker struct {
	validateFn func(ctx context.Context, password string) (bool, error)
}

func (c *fakeChecker) ValidatePassword(ctx context.Context, password string) (bool, error) {
	if c.validateFn != nil {
		return c.validateFn(ctx, password)
	}
	return password == "codequest", nil
}

func TestGateUnlockPersistsAcrossPageObjects(t *testing.T) {
	sessions := localstore.NewMemStore()
	gate := NewGate(&fakeChecker{}, sessions)

	if gate.Unlocked() {
		t.Fatal("gate unlocked before any password was entered")
	}
	ok, err := gate.Unlock(context.Background(), "codequest")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}
	if !gate.Unlocked() {
		t.Error("gate still locked after a successful unlock")
	}

	// A reload builds a fresh page object over the same session.
	reloaded := NewGate(&fakeChecker{}, sessions)
	if !reloaded.Unlocked() {
		t.Error("unlocked flag did not survive into a new page object")
	}
}

func TestGateWrongPassword(t *testing.T) {
	gate := NewGate(&fakeChecker{}, localstore.NewMemStore())
	ok, err := gate.Unlock(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if ok || gate.Unlocked() {
		t.Error("wrong password unlocked the gate")
	}
}

func TestGateCheckerFailure(t *testing.T) {
	boom := errors.New("backend down")
	checker := &fakeChecker{validateFn: func(context.Context, string) (bool, error) {
		return false, boom
	}}
	gate := NewGate(checker, localstore.NewMemStore())

	ok, err := gate.Unlock(context.Background(), "codequest")
	if !errors.Is(err, boom) {
		t.Fatalf("Unlock error = %v, want %v", err, boom)
	}
	if ok || gate.Unlocked() {
		t.Error("gate unlocked despite a checker failure")
	}
}

func TestGateLock(t *testing.T) {
	gate := NewGate(&fakeChecker{}, localstore.NewMemStore())
	if _, err := gate.Unlock(context.Background(), "codequest"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := gate.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if gate.Unlocked() {
		t.Error("gate still unlocked after Lock")
	}
}

func TestHashChecker(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("codequest"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	checker := NewHashChecker(string(hash))

	ok, err := checker.ValidatePassword(context.Background(), "codequest")
	if err != nil || !ok {
		t.Errorf("correct password: ok=%t err=%v", ok, err)
	}
	ok, err = checker.ValidatePassword(context.Background(), "wrong")
	if err != nil || ok {
		t.Errorf("wrong password: ok=%t err=%v", ok, err)
	}

	broken := NewHashChecker("not-a-bcrypt-hash")
	if _, err := broken.ValidatePassword(context.Background(), "codequest"); err == nil {
		t.Error("malformed hash produced no error")
	}
}
