package page

import (
	"context"
	"errors"
	"testing"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/watch"
)

type fakeSource struct {
	listFn func(ctx context.Context) ([]problems.Summary, error)
	getFn  func(ctx context.Context, id string) (problems.Problem, error)
}

func (s *fakeSource) ListProblems(ctx context.Context) ([]problems.Summary, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return []problems.Summary{{ID: "A", Title: "Two Sum"}}, nil
}

func (s *fakeSource) GetProblem(ctx context.Context, id string) (problems.Problem, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return problems.Problem{
		ID:        id,
		Title:     "Two Sum",
		Statement: "Sum them.",
		Input:     "Two integers.",
		Output:    "One integer.",
		Samples:   []problems.Sample{},
	}, nil
}

// snapshot builds a synced watcher frame with the given authoritative state.
func snapshot(phase contest.Phase, remaining float64, visible bool) watch.Snapshot {
	st := contest.Status{Status: phase, RemainingTime: remaining, IsVisible: visible}
	return watch.Snapshot{Status: st, Remaining: st.Remaining(), Synced: true}
}

func TestLandingRefreshKeepsListOnFailure(t *testing.T) {
	var fail bool
	src := &fakeSource{listFn: func(context.Context) ([]problems.Summary, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []problems.Summary{{ID: "A"}, {ID: "B"}}, nil
	}}
	landing := NewLanding(src, true)

	if err := landing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(landing.Problems) != 2 {
		t.Fatalf("got %d problems, want 2", len(landing.Problems))
	}

	fail = true
	if err := landing.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh succeeded against a failing source")
	}
	if len(landing.Problems) != 2 {
		t.Errorf("failed refresh dropped the list: %d problems left", len(landing.Problems))
	}
	if landing.Err == nil {
		t.Error("failed refresh left no inline error")
	}

	fail = false
	if err := landing.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh after recovery: %v", err)
	}
	if landing.Err != nil {
		t.Errorf("inline error not cleared after recovery: %v", landing.Err)
	}
}

func TestLandingContentVisibility(t *testing.T) {
	landing := NewLanding(&fakeSource{}, true)

	if landing.ContentVisible() {
		t.Error("content visible before any status arrived")
	}
	landing.ApplySnapshot(snapshot(contest.PhasePending, 300, true))
	if landing.ContentVisible() {
		t.Error("content visible while pending")
	}
	landing.ApplySnapshot(snapshot(contest.PhaseRunning, 3600, true))
	if !landing.ContentVisible() {
		t.Error("content hidden while running and visible")
	}
	landing.ApplySnapshot(snapshot(contest.PhaseRunning, 3600, false))
	if landing.ContentVisible() {
		t.Error("content visible with the admin toggle off")
	}
	landing.ApplySnapshot(snapshot(contest.PhaseEnded, 0, true))
	if landing.ContentVisible() {
		t.Error("content still visible after the contest ended")
	}
}

func TestLandingStaticContentAlwaysVisible(t *testing.T) {
	landing := NewLanding(&fakeSource{}, false)
	if !landing.ContentVisible() {
		t.Error("deployment without a contest hid content behind contest state")
	}
}

func TestLandingTransitionNotice(t *testing.T) {
	landing := NewLanding(&fakeSource{}, true)

	landing.ApplySnapshot(snapshot(contest.PhasePending, 10, true))
	if landing.Notice != "" {
		t.Errorf("first snapshot produced a notice: %q", landing.Notice)
	}

	landing.ApplySnapshot(snapshot(contest.PhaseRunning, 3600, true))
	if got := landing.TakeNotice(); got != "Contest started!" {
		t.Errorf("start notice = %q", got)
	}
	if landing.Notice != "" {
		t.Error("TakeNotice did not clear the banner")
	}

	landing.ApplySnapshot(snapshot(contest.PhaseRunning, 3500, true))
	if landing.Notice != "" {
		t.Errorf("repeated running snapshot produced a notice: %q", landing.Notice)
	}

	landing.ApplySnapshot(snapshot(contest.PhaseEnded, 0, true))
	if got := landing.TakeNotice(); got != "Contest has ended" {
		t.Errorf("end notice = %q", got)
	}
}

func TestLandingStatusLine(t *testing.T) {
	landing := NewLanding(&fakeSource{}, true)
	if got := landing.StatusLine(); got != "Checking contest status..." {
		t.Errorf("pre-sync status line = %q", got)
	}

	landing.ApplySnapshot(snapshot(contest.PhasePending, 600, false))
	if got := landing.StatusLine(); got != "Contest starts in 00:10:00" {
		t.Errorf("pending status line = %q", got)
	}

	landing.ApplySnapshot(snapshot(contest.PhaseRunning, 3661, true))
	if got := landing.StatusLine(); got != "Time remaining: 01:01:01" {
		t.Errorf("running status line = %q", got)
	}

	landing.ApplySnapshot(snapshot(contest.PhaseEnded, 0, true))
	if got := landing.StatusLine(); got != "Contest has ended" {
		t.Errorf("ended status line = %q", got)
	}

	landing.ApplySnapshot(watch.Snapshot{Status: contest.NoContestStatus(), Synced: true})
	if got := landing.StatusLine(); got != "No active contest" {
		t.Errorf("no-contest status line = %q", got)
	}
}

func TestLandingStatusLineBeforeFirstSync(t *testing.T) {
	landing := NewLanding(&fakeSource{}, true)
	landing.ApplySnapshot(watch.Snapshot{Err: errors.New("connection refused")})
	if got := landing.StatusLine(); got != "Contest status unavailable" {
		t.Errorf("status line = %q", got)
	}
	if landing.ContentVisible() {
		t.Error("content visible while the status was never fetched")
	}
}
