package page

import (
	"context"
	"fmt"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/watch"
)

// ProblemView is the problem-detail page's state.
type ProblemView struct {
	source         problems.Source
	requireContest bool

	// Problem is the last successfully loaded problem; valid once Loaded.
	Problem problems.Problem
	Loaded  bool
	// Err is the inline load-failure slot; a failed Load keeps the
	// previous problem on screen.
	Err error

	phase   contest.Phase
	visible bool
}

// NewProblemView builds the problem page state.
func NewProblemView(source problems.Source, requireContest bool) *ProblemView {
	return &ProblemView{source: source, requireContest: requireContest}
}

// Load fetches one problem by id.
func (v *ProblemView) Load(ctx context.Context, id string) error {
	p, err := v.source.GetProblem(ctx, id)
	if err != nil {
		v.Err = fmt.Errorf("failed to load problem %s: %w", id, err)
		return v.Err
	}
	v.Problem = p
	v.Loaded = true
	v.Err = nil
	return nil
}

// ApplySnapshot tracks the contest state the content and submission gates
// depend on.
func (v *ProblemView) ApplySnapshot(snap watch.Snapshot) {
	v.phase = snap.Status.Status
	v.visible = snap.Status.IsVisible
}

// ContentVisible mirrors the landing page's gate for the statement itself.
func (v *ProblemView) ContentVisible() bool {
	return contentVisible(v.requireContest, v.visible, v.phase)
}

// SubmitEnabled reports whether the external submission link is active.
// There is nothing to enable without a link, and the end of the contest
// disables it even while the page stays open.
func (v *ProblemView) SubmitEnabled() bool {
	if !v.Loaded || v.Problem.VJLink == "" {
		return false
	}
	return contentVisible(v.requireContest, v.visible, v.phase)
}
