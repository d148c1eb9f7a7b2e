// Package page holds the per-page application state objects: the password
// gate, the landing page, the problem viewer, and the admin panel. Each
// object owns the state its browser page kept in module-level globals;
// handlers mutate it explicitly and rendering only reads it. Nothing here
// draws anything, so the same objects back both the web pages and the CLI.
package page

import (
	"context"
	"fmt"
	"time"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/watch"
)

// Landing is the landing page's state: the problem list plus the contest
// gating that decides whether contestants may see it yet.
type Landing struct {
	source         problems.Source
	requireContest bool

	// Problems is the last successfully loaded list. A failed refresh
	// keeps it and records Err instead.
	Problems []problems.Summary
	// Err is the inline load-failure slot; nil after a good refresh.
	Err error
	// Notice is the one-shot phase-change banner, cleared by TakeNotice.
	Notice string

	applied   bool
	synced    bool
	phase     contest.Phase
	remaining time.Duration
	visible   bool
	noContest bool
	statusErr error
}

// NewLanding builds the landing state. Deployments without a contest
// backend pass requireContest=false and show content as soon as the gate
// opens; with one, visibility follows the contest.
func NewLanding(source problems.Source, requireContest bool) *Landing {
	return &Landing{source: source, requireContest: requireContest}
}

// Refresh reloads the problem list. On failure the previous list stays up
// and the error is kept for inline display.
func (l *Landing) Refresh(ctx context.Context) error {
	list, err := l.source.ListProblems(ctx)
	if err != nil {
		l.Err = fmt.Errorf("failed to load problems: %w", err)
		return l.Err
	}
	l.Problems = list
	l.Err = nil
	return nil
}

// ApplySnapshot folds a watcher snapshot into the page. A snapshot that
// never synced carries no status worth folding, only the error. The
// phase-change notice is derived from the page's own previous phase, so it
// fires exactly once per transition no matter how many snapshots repeat
// the new state.
func (l *Landing) ApplySnapshot(snap watch.Snapshot) {
	l.applied = true
	l.synced = snap.Synced
	l.statusErr = snap.Err
	if !snap.Synced {
		return
	}
	prev := l.phase
	l.phase = snap.Status.Status
	l.remaining = snap.Remaining
	l.visible = snap.Status.IsVisible
	l.noContest = snap.Status.NoContest()
	if tr, ok := contest.DetectTransition(prev, snap.Status.Status); ok {
		l.Notice = transitionNotice(tr)
	}
}

// TakeNotice returns the pending transition banner and clears it, so the
// renderer shows it once.
func (l *Landing) TakeNotice() string {
	n := l.Notice
	l.Notice = ""
	return n
}

// Phase returns the last applied contest phase.
func (l *Landing) Phase() contest.Phase {
	return l.phase
}

// ContentVisible reports whether the problem list may be shown. Content
// stays hidden until the contest runs and the admin made it visible, and
// hides again when the contest ends.
func (l *Landing) ContentVisible() bool {
	return contentVisible(l.requireContest, l.visible, l.phase)
}

// StatusLine renders the contest banner for the top of the page.
func (l *Landing) StatusLine() string {
	switch {
	case !l.applied:
		return "Checking contest status..."
	case !l.synced:
		return "Contest status unavailable"
	case l.noContest:
		return "No active contest"
	case l.phase == contest.PhasePending:
		return "Contest starts in " + contest.FormatClock(l.remaining)
	case l.phase == contest.PhaseRunning:
		return "Time remaining: " + contest.FormatClock(l.remaining)
	default:
		return "Contest has ended"
	}
}

func transitionNotice(tr contest.Transition) string {
	switch tr.To {
	case contest.PhaseRunning:
		return "Contest started!"
	case contest.PhaseEnded:
		return "Contest has ended"
	default:
		return "Contest reset"
	}
}

// contentVisible is the gating rule both viewer pages share: without a
// contest backend content shows once the gate is open, otherwise the admin
// toggle and the running phase both have to agree.
func contentVisible(requireContest, visible bool, phase contest.Phase) bool {
	if !requireContest {
		return true
	}
	return visible && phase == contest.PhaseRunning
}
