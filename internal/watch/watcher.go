// Package watch implements the contest-state watcher every page runs: a
// lightweight last-update poll on an adaptive interval, a full status fetch
// when the stamp moves, transition detection with a broadcast to sibling
// tabs, and a 100ms local tick that keeps the on-screen countdown smooth
// between polls. The server's value always overwrites the local countdown;
// ticking is display-only and nothing extrapolated locally survives a fetch.
package watch

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/broadcast"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
)

// StatusSource defines what the watcher needs from the contest backend.
type StatusSource interface {
	ContestStatus(ctx context.Context) (contest.Status, error)
	ContestLastUpdate(ctx context.Context) (contest.LastUpdate, error)
}

// Config tunes the watcher's cadence.
type Config struct {
	// PollInterval is the coarse last-update cadence.
	PollInterval time.Duration
	// FastPollInterval replaces PollInterval when the countdown is close to
	// a phase boundary.
	FastPollInterval time.Duration
	// FastThreshold is how close to zero the countdown must be before the
	// fast cadence kicks in.
	FastThreshold time.Duration
	// TickInterval drives the local display countdown.
	TickInterval time.Duration
}

// DefaultConfig returns the production cadence: 30s polls tightened to 5s
// inside the last 30s, with a 100ms display tick.
func DefaultConfig() Config {
	return Config{
		PollInterval:     30 * time.Second,
		FastPollInterval: 5 * time.Second,
		FastThreshold:    30 * time.Second,
		TickInterval:     100 * time.Millisecond,
	}
}

// Snapshot is what pages render: the last authoritative status plus the
// smooth local countdown. Transition is set when the snapshot announces a
// phase change; Err carries the latest fetch failure while the stale status
// stays displayed.
type Snapshot struct {
	Status     contest.Status
	Remaining  time.Duration
	Transition *contest.Transition
	Err        error
	Synced     bool
}

// Clock renders the countdown as HH:MM:SS.
func (s Snapshot) Clock() string {
	return contest.FormatClock(s.Remaining)
}

// Watcher drives one tab's view of the contest. All state lives on the Run
// goroutine; consumers read coalesced snapshots from Snapshots.
type Watcher struct {
	backend StatusSource
	bus     broadcast.Bus
	source  string
	cfg     Config
	clock   clockwork.Clock
	logger  zerolog.Logger

	snapshots chan Snapshot
	busEvents chan broadcast.Event

	status    contest.Status
	countdown *contest.Countdown
	lastStamp int64
	lastErr   error
	synced    bool
}

// NewWatcher builds a watcher. Source is the tab identity used when
// broadcasting, normally the same one the bus was built with.
func NewWatcher(backend StatusSource, bus broadcast.Bus, source string, cfg Config) *Watcher {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.FastPollInterval <= 0 {
		cfg.FastPollInterval = def.FastPollInterval
	}
	if cfg.FastThreshold <= 0 {
		cfg.FastThreshold = def.FastThreshold
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	return &Watcher{
		backend:   backend,
		bus:       bus,
		source:    source,
		cfg:       cfg,
		clock:     clockwork.NewRealClock(),
		logger:    log.With().Str("component", "watch").Str("source", source).Logger(),
		snapshots: make(chan Snapshot, 1),
		busEvents: make(chan broadcast.Event, 8),
		countdown: contest.NewCountdown(0),
	}
}

// WithClock swaps the wall clock. Call before Run.
func (w *Watcher) WithClock(clock clockwork.Clock) *Watcher {
	w.clock = clock
	return w
}

// Snapshots returns the coalesced state stream. Only the latest snapshot is
// retained; slow readers skip intermediate frames, never block the watcher.
func (w *Watcher) Snapshots() <-chan Snapshot {
	return w.snapshots
}

// Run polls and ticks until ctx is cancelled. It performs one immediate
// sync before settling into the cadence.
func (w *Watcher) Run(ctx context.Context) error {
	stop := w.bus.Subscribe(func(ev broadcast.Event) {
		if ev.Type != broadcast.TypeContestUpdate {
			return
		}
		select {
		case w.busEvents <- ev:
		default:
			// A full queue means refreshes are already pending; dropping a
			// doorbell loses nothing.
		}
	})
	defer stop()

	w.poll(ctx, false, true)

	ticker := w.clock.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()
	pollTimer := w.clock.NewTimer(w.pollInterval())
	defer stopAndDrainTimer(pollTimer)
	lastTick := w.clock.Now()

	w.logger.Debug().
		Dur("poll_interval", w.cfg.PollInterval).
		Dur("fast_poll_interval", w.cfg.FastPollInterval).
		Msg("Watcher started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.Chan():
			now := w.clock.Now()
			elapsed := now.Sub(lastTick)
			lastTick = now
			if w.countdown.Tick(elapsed) {
				// Display hit zero; ask the server to confirm the phase
				// change instead of waiting out the interval.
				stopAndDrainTimer(pollTimer)
				w.poll(ctx, false, true)
				pollTimer.Reset(w.pollInterval())
			} else {
				w.emit(nil)
			}

		case <-pollTimer.Chan():
			w.poll(ctx, false, true)
			pollTimer.Reset(w.pollInterval())

		case ev := <-w.busEvents:
			// A sibling already announced the change: refresh now but do
			// not broadcast again, or tabs would ring each other forever.
			w.logger.Debug().Str("action", ev.Action).Str("from", ev.Source).Msg("Refreshing on sibling event")
			stopAndDrainTimer(pollTimer)
			w.poll(ctx, true, false)
			pollTimer.Reset(w.pollInterval())
		}
	}
}

// poll checks the last-update stamp and, when it moved (or force is set),
// fetches the full status. A detected phase change is announced on the bus
// only when announce is set. Exactly one snapshot is emitted per call.
func (w *Watcher) poll(ctx context.Context, force, announce bool) {
	lu, err := w.backend.ContestLastUpdate(ctx)
	if err != nil {
		w.fail("last-update poll failed", err)
		return
	}

	if lu.Status == contest.LastUpdateNoContest {
		w.status = contest.NoContestStatus()
		w.countdown.Set(0)
		w.lastStamp = 0
		w.lastErr = nil
		w.synced = true
		w.emit(nil)
		return
	}

	if w.synced && !force && lu.LastUpdate == w.lastStamp {
		w.lastErr = nil
		w.emit(nil)
		return
	}

	st, err := w.backend.ContestStatus(ctx)
	if err != nil {
		w.fail("status fetch failed", err)
		return
	}

	prev := w.status.Status
	firstSync := !w.synced
	w.status = st
	w.countdown.Set(st.Remaining())
	w.lastStamp = lu.LastUpdate
	w.lastErr = nil
	w.synced = true

	var transition *contest.Transition
	if tr, ok := contest.DetectTransition(prev, st.Status); ok && !firstSync {
		transition = &tr
		w.logger.Info().Str("transition", tr.String()).Msg("Contest phase changed")
		if announce {
			ev := broadcast.New(broadcast.TypeContestUpdate, broadcast.ActionTransition, w.source, w.clock.Now())
			if err := w.bus.Publish(ctx, ev); err != nil {
				w.logger.Warn().Err(err).Msg("Failed to broadcast transition")
			}
		}
	}
	w.emit(transition)
}

// fail records a fetch error. The previous status stays on screen; the
// countdown keeps ticking from where it was.
func (w *Watcher) fail(msg string, err error) {
	w.logger.Warn().Err(err).Msg(msg)
	w.lastErr = err
	w.emit(nil)
}

// pollInterval picks the cadence for the next poll. The fast cadence only
// applies while a countdown is armed: a running contest, or a pending one
// whose start is scheduled. An idle pending state polls coarsely.
func (w *Watcher) pollInterval() time.Duration {
	if !w.synced {
		return w.cfg.PollInterval
	}
	armed := w.status.Status == contest.PhaseRunning ||
		(w.status.Status == contest.PhasePending && w.status.Remaining() > 0)
	if armed && w.countdown.Remaining() < w.cfg.FastThreshold {
		return w.cfg.FastPollInterval
	}
	return w.cfg.PollInterval
}

func (w *Watcher) emit(transition *contest.Transition) {
	snap := Snapshot{
		Status:     w.status,
		Remaining:  w.countdown.Remaining(),
		Transition: transition,
		Err:        w.lastErr,
		Synced:     w.synced,
	}
	for {
		select {
		case w.snapshots <- snap:
			return
		default:
		}
		// Channel full: drop the stale frame and retry with the fresh one.
		select {
		case <-w.snapshots:
		default:
		}
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel so a fire
// that raced the stop is not consumed later as a phantom poll.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
