package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/broadcast"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
)

type fakeBackend struct {
	mu              sync.Mutex
	status          contest.Status
	stamp           int64
	noContest       bool
	lastUpdateErr   error
	statusCalls     int
	lastUpdateCalls int
}

func (f *fakeBackend) set(status contest.Status, stamp int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.stamp = stamp
	f.noContest = false
}

func (f *fakeBackend) setLastUpdateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdateErr = err
}

func (f *fakeBackend) calls() (lastUpdate, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpdateCalls, f.statusCalls
}

func (f *fakeBackend) ContestStatus(ctx context.Context) (contest.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.status, nil
}

func (f *fakeBackend) ContestLastUpdate(ctx context.Context) (contest.LastUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdateCalls++
	if f.lastUpdateErr != nil {
		return contest.LastUpdate{}, f.lastUpdateErr
	}
	if f.noContest {
		return contest.LastUpdate{LastUpdate: 0, Status: contest.LastUpdateNoContest}, nil
	}
	return contest.LastUpdate{LastUpdate: f.stamp, Status: "ok"}, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []broadcast.Event
	handlers  []func(broadcast.Event)
}

func (b *fakeBus) Publish(ctx context.Context, ev broadcast.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, ev)
	return nil
}

func (b *fakeBus) Subscribe(fn func(broadcast.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
	return func() {}
}

func (b *fakeBus) inject(ev broadcast.Event) {
	b.mu.Lock()
	handlers := append([]func(broadcast.Event){}, b.handlers...)
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (b *fakeBus) events() []broadcast.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcast.Event{}, b.published...)
}

func testConfig() Config {
	return Config{
		PollInterval:     30 * time.Second,
		FastPollInterval: 5 * time.Second,
		FastThreshold:    30 * time.Second,
		TickInterval:     100 * time.Millisecond,
	}
}

func running(remaining float64) contest.Status {
	return contest.Status{Status: contest.PhaseRunning, RemainingTime: remaining, IsVisible: true, TotalDurationMinutes: 120}
}

func startWatcher(t *testing.T, backend *fakeBackend, bus *fakeBus) (*Watcher, *clockwork.FakeClock) {
	return startWatcherCfg(t, backend, bus, testConfig())
}

// startWatcherCfg runs a watcher on a fake clock. Tests that assert on a
// one-shot snapshot field pass a config with a huge TickInterval so tick
// frames cannot displace the frame under test from the coalescing channel.
func startWatcherCfg(t *testing.T, backend *fakeBackend, bus *fakeBus, cfg Config) (*Watcher, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	w := NewWatcher(backend, bus, "tab-under-test", cfg).WithClock(fc)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop on cancel")
		}
	})
	// The initial sync runs before the timers exist; once both the ticker
	// and the poll timer are parked the loop is quiescent.
	fc.BlockUntil(2)
	return w, fc
}

func waitSnapshot(t *testing.T, w *Watcher, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-w.Snapshots():
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("never observed: %s", what)
		}
	}
}

func TestWatcherInitialSync(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(120), 1)
	w, _ := startWatcher(t, backend, &fakeBus{})

	snap := waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })
	if snap.Status.Status != contest.PhaseRunning {
		t.Errorf("phase = %s, want running", snap.Status.Status)
	}
	if snap.Remaining != 120*time.Second {
		t.Errorf("remaining = %v, want 2m0s", snap.Remaining)
	}
	if snap.Transition != nil {
		t.Errorf("first sync reported transition %v", snap.Transition)
	}
	if snap.Clock() != "00:02:00" {
		t.Errorf("clock = %q", snap.Clock())
	}
}

func TestWatcherTicksCountdownBetweenPolls(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(120), 1)
	w, fc := startWatcher(t, backend, &fakeBus{})
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	fc.Advance(100 * time.Millisecond)
	snap := waitSnapshot(t, w, "ticked snapshot", func(s Snapshot) bool {
		return s.Remaining < 120*time.Second
	})
	if snap.Remaining != 120*time.Second-100*time.Millisecond {
		t.Errorf("remaining after one tick = %v", snap.Remaining)
	}

	// Ticks are display-only: no extra backend traffic.
	if lu, st := backend.calls(); lu != 1 || st != 1 {
		t.Errorf("backend calls after tick = %d/%d, want 1/1", lu, st)
	}
}

func TestWatcherServerValueOverwritesLocalCountdown(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(120), 1)
	w, fc := startWatcher(t, backend, &fakeBus{})
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	// Local ticks walk the countdown down...
	fc.BlockUntil(2)
	fc.Advance(10 * time.Second)
	waitSnapshot(t, w, "decremented countdown", func(s Snapshot) bool {
		return s.Remaining <= 110*time.Second
	})

	// ...but an admin added time, and the next poll must snap to the
	// server's value, discarding local extrapolation. A trailing display
	// tick may already have shaved a little off the fresh value.
	backend.set(running(600), 2)
	fc.BlockUntil(2)
	fc.Advance(20 * time.Second)
	snap := waitSnapshot(t, w, "server overwrite", func(s Snapshot) bool {
		return s.Remaining > 500*time.Second
	})
	if snap.Remaining > 600*time.Second {
		t.Errorf("remaining = %v, want at most 10m0s from server", snap.Remaining)
	}
}

func TestWatcherDetectsTransitionAndBroadcasts(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(contest.Status{Status: contest.PhasePending, RemainingTime: 300, IsVisible: true}, 1)
	bus := &fakeBus{}
	cfg := testConfig()
	cfg.TickInterval = time.Hour
	w, fc := startWatcherCfg(t, backend, bus, cfg)
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	backend.set(running(7200), 2)
	fc.Advance(30 * time.Second)

	snap := waitSnapshot(t, w, "transition snapshot", func(s Snapshot) bool {
		return s.Transition != nil
	})
	if snap.Transition.From != contest.PhasePending || snap.Transition.To != contest.PhaseRunning {
		t.Errorf("transition = %v", snap.Transition)
	}
	if snap.Status.Status != contest.PhaseRunning || snap.Remaining != 7200*time.Second {
		t.Errorf("post-transition snapshot = %+v", snap)
	}

	events := bus.events()
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	if events[0].Type != broadcast.TypeContestUpdate || events[0].Action != broadcast.ActionTransition {
		t.Errorf("published event = %+v", events[0])
	}
	if events[0].Source != "tab-under-test" {
		t.Errorf("event source = %q", events[0].Source)
	}
}

func TestWatcherUnchangedStampSkipsStatusFetch(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(3600), 1)
	w, fc := startWatcher(t, backend, &fakeBus{})
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	fc.Advance(30 * time.Second)
	waitSnapshot(t, w, "second poll", func(s Snapshot) bool {
		lu, _ := backend.calls()
		return lu >= 2
	})

	if lu, st := backend.calls(); lu != 2 || st != 1 {
		t.Errorf("calls = %d last-update / %d status, want 2 / 1", lu, st)
	}
}

func TestWatcherFastPollNearBoundary(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(10), 1)
	w, fc := startWatcher(t, backend, &fakeBus{})
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	// Inside the last 30s the cadence tightens to 5s.
	fc.Advance(5 * time.Second)
	waitSnapshot(t, w, "fast poll", func(s Snapshot) bool {
		lu, _ := backend.calls()
		return lu >= 2
	})
}

func TestWatcherCoarsePollFarFromBoundary(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(3600), 1)
	w, fc := startWatcher(t, backend, &fakeBus{})
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	fc.Advance(5 * time.Second)
	waitSnapshot(t, w, "tick at 5s", func(s Snapshot) bool {
		return s.Remaining <= 3595*time.Second
	})
	if lu, _ := backend.calls(); lu != 1 {
		t.Errorf("poll ran after 5s despite 30s cadence (calls=%d)", lu)
	}
}

func TestWatcherZeroCrossingPollsImmediately(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(0.2), 1)
	bus := &fakeBus{}
	w, fc := startWatcher(t, backend, bus)
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	// The server has already flipped to ended; the local display reaching
	// zero should trigger a confirm poll without waiting for the cadence.
	backend.set(contest.Status{Status: contest.PhaseEnded}, 2)

	fc.BlockUntil(2)
	fc.Advance(100 * time.Millisecond)
	fc.BlockUntil(2)
	fc.Advance(100 * time.Millisecond)

	snap := waitSnapshot(t, w, "ended snapshot", func(s Snapshot) bool {
		return s.Status.Status == contest.PhaseEnded
	})
	if snap.Remaining != 0 {
		t.Errorf("remaining = %v after end", snap.Remaining)
	}
	if events := bus.events(); len(events) != 1 || events[0].Action != broadcast.ActionTransition {
		t.Errorf("published = %+v, want one transition", events)
	}
}

func TestWatcherSiblingEventRefreshesWithoutRebroadcast(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(7200), 1)
	bus := &fakeBus{}
	w, fc := startWatcher(t, backend, bus)
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	backend.set(contest.Status{Status: contest.PhaseEnded}, 2)
	fc.BlockUntil(2)
	bus.inject(broadcast.New(broadcast.TypeContestUpdate, broadcast.ActionStop, "other-tab", time.Now()))

	snap := waitSnapshot(t, w, "refreshed snapshot", func(s Snapshot) bool {
		return s.Status.Status == contest.PhaseEnded
	})
	if snap.Transition == nil {
		t.Error("refresh did not report the observed transition locally")
	}
	if events := bus.events(); len(events) != 0 {
		t.Errorf("sibling refresh re-broadcast %d events", len(events))
	}
}

func TestWatcherIgnoresProblemsEvents(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(7200), 1)
	bus := &fakeBus{}
	w, fc := startWatcher(t, backend, bus)
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	fc.BlockUntil(2)
	bus.inject(broadcast.New(broadcast.TypeProblemsUpdate, broadcast.ActionCreate, "other-tab", time.Now()))

	// A tick later, still exactly one poll: problems-update is not ours.
	fc.Advance(100 * time.Millisecond)
	waitSnapshot(t, w, "tick", func(s Snapshot) bool { return s.Remaining < 7200*time.Second })
	if lu, _ := backend.calls(); lu != 1 {
		t.Errorf("problems event triggered contest poll (calls=%d)", lu)
	}
}

func TestWatcherNoContest(t *testing.T) {
	backend := &fakeBackend{noContest: true}
	w, _ := startWatcher(t, backend, &fakeBus{})

	snap := waitSnapshot(t, w, "no-contest snapshot", func(s Snapshot) bool { return s.Synced })
	if !snap.Status.NoContest() {
		t.Errorf("snapshot = %+v, want no-contest", snap.Status)
	}
	if snap.Status.Status != contest.PhasePending || snap.Remaining != 0 {
		t.Errorf("no-contest snapshot = %+v", snap)
	}
	// The stamp said no contest; a full status fetch would be wasted.
	if _, st := backend.calls(); st != 0 {
		t.Errorf("status fetched %d times despite no contest", st)
	}
}

func TestWatcherKeepsStateThroughErrors(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(running(3600), 1)
	w, fc := startWatcher(t, backend, &fakeBus{})
	waitSnapshot(t, w, "synced snapshot", func(s Snapshot) bool { return s.Synced })

	backend.setLastUpdateErr(context.DeadlineExceeded)
	fc.Advance(30 * time.Second)
	snap := waitSnapshot(t, w, "errored snapshot", func(s Snapshot) bool { return s.Err != nil })
	if snap.Status.Status != contest.PhaseRunning || !snap.Synced {
		t.Errorf("error snapshot dropped state: %+v", snap)
	}

	backend.setLastUpdateErr(nil)
	fc.BlockUntil(2)
	fc.Advance(30 * time.Second)
	waitSnapshot(t, w, "recovered snapshot", func(s Snapshot) bool {
		lu, _ := backend.calls()
		return s.Err == nil && lu >= 3
	})
}
