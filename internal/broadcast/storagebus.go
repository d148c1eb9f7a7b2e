package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/localstore"
)

// StorageBusConfig tunes the shared-storage transport.
type StorageBusConfig struct {
	// Key is the storage slot events are written to. All tabs of one
	// deployment must agree on it.
	Key string
	// PollInterval is how often subscribers check the slot.
	PollInterval time.Duration
	// RetractAfter is how long a published payload stays in the slot before
	// it is removed. Together with PollInterval it bounds how long stale
	// payloads linger.
	RetractAfter time.Duration
}

// DefaultStorageBusConfig returns the production settings: events are
// observed within one 25ms poll and retracted within about 100ms of
// publication.
func DefaultStorageBusConfig() StorageBusConfig {
	return StorageBusConfig{
		Key:          "cc.broadcast",
		PollInterval: 25 * time.Millisecond,
		RetractAfter: 75 * time.Millisecond,
	}
}

// StorageBus carries events through a shared localstore slot. Publishing
// writes the encoded event to the slot; every bus polls the slot and
// dispatches payloads it has not seen from sources other than its own. The
// payload is retracted shortly after publication by whichever bus notices
// its age first, so the slot is a doorbell rather than a mailbox: a tab that
// polls too late simply misses the event.
//
// Over a MemStore the bus connects goroutines in one process; over a
// FileStore it connects separate processes sharing a state directory.
type StorageBus struct {
	store  localstore.Store
	source string
	cfg    StorageBusConfig
	clock  clockwork.Clock
	logger zerolog.Logger

	subs subscribers

	mu       sync.Mutex
	lastSeen string
}

// NewStorageBus builds a bus over store. Source must be unique per tab; use
// NewSource.
func NewStorageBus(store localstore.Store, source string, cfg StorageBusConfig) *StorageBus {
	if cfg.Key == "" {
		cfg.Key = DefaultStorageBusConfig().Key
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultStorageBusConfig().PollInterval
	}
	if cfg.RetractAfter <= 0 {
		cfg.RetractAfter = DefaultStorageBusConfig().RetractAfter
	}
	return &StorageBus{
		store:  store,
		source: source,
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		logger: log.With().Str("component", "broadcast").Str("source", source).Logger(),
	}
}

// WithClock swaps the wall clock. Call before Run.
func (b *StorageBus) WithClock(clock clockwork.Clock) *StorageBus {
	b.clock = clock
	return b
}

// Source returns the bus's tab identity.
func (b *StorageBus) Source() string {
	return b.source
}

// Publish writes ev to the slot, overwriting any payload already there.
// Last write wins; the convention tolerates a concurrent publish clobbering
// an undelivered one.
func (b *StorageBus) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if err := b.store.Set(b.cfg.Key, string(data)); err != nil {
		return fmt.Errorf("failed to publish broadcast event: %w", err)
	}
	// Mark our own event as seen so the poll loop never dispatches it back
	// to this tab's subscribers.
	b.mu.Lock()
	b.lastSeen = ev.ID
	b.mu.Unlock()
	b.logger.Debug().
		Str("event_id", ev.ID).
		Str("type", string(ev.Type)).
		Str("action", ev.Action).
		Msg("Published broadcast event")
	return nil
}

// Subscribe registers fn for events published by other sources.
func (b *StorageBus) Subscribe(fn func(Event)) (stop func()) {
	return b.subs.add(fn)
}

// Run polls the slot until ctx is cancelled, dispatching fresh events and
// retracting aged payloads. Each tab runs exactly one Run loop per bus.
func (b *StorageBus) Run(ctx context.Context) error {
	ticker := b.clock.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()
	b.logger.Debug().
		Dur("poll_interval", b.cfg.PollInterval).
		Msg("Broadcast bus started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			b.poll()
		}
	}
}

func (b *StorageBus) poll() {
	raw, ok, err := b.store.Get(b.cfg.Key)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Failed to read broadcast slot")
		return
	}
	if !ok {
		return
	}
	ev, err := decodeEvent([]byte(raw))
	if err != nil {
		// A corrupt payload would otherwise wedge the slot forever.
		b.logger.Warn().Err(err).Msg("Discarding corrupt broadcast payload")
		b.retract()
		return
	}
	b.mu.Lock()
	fresh := ev.ID != b.lastSeen
	if fresh {
		b.lastSeen = ev.ID
	}
	b.mu.Unlock()
	if fresh && ev.Source != b.source {
		b.logger.Debug().
			Str("event_id", ev.ID).
			Str("type", string(ev.Type)).
			Str("action", ev.Action).
			Str("from", ev.Source).
			Msg("Received broadcast event")
		b.subs.dispatch(ev)
	}
	if ev.Age(b.clock.Now()) >= b.cfg.RetractAfter {
		b.retract()
	}
}

func (b *StorageBus) retract() {
	if err := b.store.Delete(b.cfg.Key); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to retract broadcast payload")
	}
}
