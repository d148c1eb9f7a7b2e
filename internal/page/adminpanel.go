package page

import (
	"context"
	"fmt"
	"time"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/admin"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/problems"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/watch"
)

// AdminPanel is the admin page's state: the login prompt, the problem
// editor form, the problem list, and the contest controls, with the inline
// slots the page renders after every action. All actions delegate to the
// controller; the panel only routes results into Message and Err.
type AdminPanel struct {
	controller *admin.Controller
	source     problems.Source

	// Form is the problem editor, shared by create and edit flows.
	Form *admin.ProblemForm

	// Problems is the admin's view of the problem list.
	Problems []problems.Summary
	// Message holds the last action's confirmation for inline display.
	Message string
	// Err holds the last action's failure for inline display.
	Err error

	status    contest.Status
	remaining time.Duration
	applied   bool
}

// NewAdminPanel wires the panel state to its controller and problem source.
func NewAdminPanel(controller *admin.Controller, source problems.Source) *AdminPanel {
	return &AdminPanel{
		controller: controller,
		source:     source,
		Form:       admin.NewProblemForm(),
	}
}

// LoggedIn mirrors the controller's session state.
func (p *AdminPanel) LoggedIn() bool {
	return p.controller.LoggedIn()
}

// RestoreSession re-attaches a stored admin session on page load.
func (p *AdminPanel) RestoreSession() bool {
	return p.controller.RestoreSession()
}

// Login verifies the admin password.
func (p *AdminPanel) Login(ctx context.Context, password string) bool {
	return p.apply(p.controller.Login(ctx, password))
}

// Logout drops the admin session.
func (p *AdminPanel) Logout() {
	if err := p.controller.Logout(); err != nil {
		p.Err = err
		p.Message = ""
		return
	}
	p.Message = "Logged out"
	p.Err = nil
}

// RefreshProblems reloads the problem list. The previous list stays on a
// failure, same as the landing page.
func (p *AdminPanel) RefreshProblems(ctx context.Context) bool {
	list, err := p.source.ListProblems(ctx)
	if err != nil {
		p.Err = fmt.Errorf("failed to load problems: %w", err)
		return false
	}
	p.Problems = list
	p.Err = nil
	return true
}

// EditProblem loads an existing problem into the form.
func (p *AdminPanel) EditProblem(ctx context.Context, id string) bool {
	prob, err := p.source.GetProblem(ctx, id)
	if err != nil {
		p.Err = fmt.Errorf("failed to load problem %s: %w", id, err)
		return false
	}
	p.Form.Load(prob)
	p.Err = nil
	return true
}

// UploadJSON populates the form from an uploaded problem file.
func (p *AdminPanel) UploadJSON(data []byte) bool {
	if err := p.Form.PopulateJSON(data); err != nil {
		p.Err = err
		p.Message = ""
		return false
	}
	p.Err = nil
	return true
}

// SubmitNew validates the form and creates the problem.
func (p *AdminPanel) SubmitNew(ctx context.Context) bool {
	prob, err := p.Form.Problem()
	if err != nil {
		p.Err = err
		p.Message = ""
		return false
	}
	return p.apply(p.controller.CreateProblem(ctx, prob))
}

// SubmitEdit validates the form and overwrites the stored problem.
func (p *AdminPanel) SubmitEdit(ctx context.Context) bool {
	prob, err := p.Form.Problem()
	if err != nil {
		p.Err = err
		p.Message = ""
		return false
	}
	return p.apply(p.controller.UpdateProblem(ctx, prob))
}

// DeleteProblem removes a problem.
func (p *AdminPanel) DeleteProblem(ctx context.Context, id string) bool {
	return p.apply(p.controller.DeleteProblem(ctx, id))
}

// Schedule arms the pre-contest countdown.
func (p *AdminPanel) Schedule(ctx context.Context, countdownMinutes, durationMinutes int) bool {
	return p.apply(p.controller.ScheduleContest(ctx, countdownMinutes, durationMinutes))
}

// Start starts the contest immediately.
func (p *AdminPanel) Start(ctx context.Context, durationMinutes int) bool {
	return p.apply(p.controller.StartContest(ctx, durationMinutes))
}

// Stop ends the contest immediately.
func (p *AdminPanel) Stop(ctx context.Context) bool {
	return p.apply(p.controller.StopContest(ctx))
}

// Reset clears the contest back to an unscheduled state.
func (p *AdminPanel) Reset(ctx context.Context) bool {
	return p.apply(p.controller.ResetContest(ctx))
}

// AddTime extends a running contest.
func (p *AdminPanel) AddTime(ctx context.Context, minutes int) bool {
	return p.apply(p.controller.AddContestTime(ctx, minutes))
}

// AddPrecountdownTime delays a pending contest's start.
func (p *AdminPanel) AddPrecountdownTime(ctx context.Context, minutes int) bool {
	return p.apply(p.controller.AddPrecountdownTime(ctx, minutes))
}

// SetVisibility shows or hides the problem set for contestants.
func (p *AdminPanel) SetVisibility(ctx context.Context, visible bool) bool {
	return p.apply(p.controller.SetContestVisibility(ctx, visible))
}

// ApplySnapshot keeps the contest status line current.
func (p *AdminPanel) ApplySnapshot(snap watch.Snapshot) {
	p.applied = true
	p.status = snap.Status
	p.remaining = snap.Remaining
}

// StatusLine renders the contest state above the controls.
func (p *AdminPanel) StatusLine() string {
	switch {
	case !p.applied || p.status.Status == "":
		return "Contest status unknown"
	case p.status.NoContest():
		return "No active contest"
	case p.status.Status == contest.PhasePending:
		return fmt.Sprintf("pending, starts in %s, visible=%t", contest.FormatClock(p.remaining), p.status.IsVisible)
	case p.status.Status == contest.PhaseRunning:
		return fmt.Sprintf("running, %s remaining, visible=%t", contest.FormatClock(p.remaining), p.status.IsVisible)
	default:
		return fmt.Sprintf("ended, visible=%t", p.status.IsVisible)
	}
}

// apply routes an action result into the inline slots.
func (p *AdminPanel) apply(message string, err error) bool {
	if err != nil {
		p.Err = err
		p.Message = ""
		return false
	}
	p.Message = message
	p.Err = nil
	return true
}
