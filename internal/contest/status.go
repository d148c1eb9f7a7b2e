package contest

import (
	"fmt"
	"time"
)

// Phase is the lifecycle phase of a contest.
type Phase string

const (
	PhasePending Phase = "pending"
	PhaseRunning Phase = "running"
	PhaseEnded   Phase = "ended"
)

// ParsePhase converts a server-reported status string into a Phase.
func ParsePhase(s string) (Phase, error) {
	switch p := Phase(s); p {
	case PhasePending, PhaseRunning, PhaseEnded:
		return p, nil
	default:
		return "", fmt.Errorf("unknown contest phase %q", s)
	}
}

// Valid reports whether p is one of the three known phases.
func (p Phase) Valid() bool {
	return p == PhasePending || p == PhaseRunning || p == PhaseEnded
}

// Terminal reports whether p is the end of the contest lifecycle. Only an
// admin reset or a fresh schedule leaves the ended phase.
func (p Phase) Terminal() bool {
	return p == PhaseEnded
}

// Status is the contest state as reported by GET /api/contest/status.
// The server owns it; the remaining time is computed there from wall-clock
// deadlines and is authoritative over any client-side countdown.
type Status struct {
	Status               Phase   `json:"status"`
	RemainingTime        float64 `json:"remaining_time"`
	IsVisible            bool    `json:"is_visible"`
	TotalDurationMinutes int     `json:"total_duration_minutes,omitempty"`
	Message              string  `json:"message,omitempty"`
}

// Remaining returns the server-reported remaining time as a duration,
// clamped at zero.
func (s Status) Remaining() time.Duration {
	if s.RemainingTime <= 0 {
		return 0
	}
	return time.Duration(s.RemainingTime * float64(time.Second))
}

// NoContest reports whether the status describes the absent-contest state
// the server returns before anything was ever scheduled.
func (s Status) NoContest() bool {
	return s.Message != ""
}

// NoContestStatus returns the snapshot served while no contest row exists:
// pending, hidden, nothing on the clock. Static deployments, which have no
// contest backend at all, synthesize their state from it.
func NoContestStatus() Status {
	return Status{
		Status:        PhasePending,
		RemainingTime: 0,
		IsVisible:     false,
		Message:       "No active contest",
	}
}

// LastUpdate is the lightweight poll stamp from GET /api/contest/last-update.
// The stamp changes on every admin action and on server-side auto-transitions,
// so comparing stamps is enough to decide whether a full status fetch is due.
type LastUpdate struct {
	LastUpdate int64  `json:"last_update"`
	Status     string `json:"status"`
}

// LastUpdateNoContest is the stamp status when no contest row exists yet.
const LastUpdateNoContest = "no_contest"

// Transition is an observed phase change between two status fetches.
type Transition struct {
	From Phase
	To   Phase
}

// DetectTransition compares the previously known phase with a freshly fetched
// one. It reports false when nothing changed or when prev is empty (first
// fetch, nothing to compare against).
func DetectTransition(prev, next Phase) (Transition, bool) {
	if prev == "" || prev == next {
		return Transition{}, false
	}
	return Transition{From: prev, To: next}, true
}

func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}
