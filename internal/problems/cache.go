package problems

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/localstore"
)

// DefaultCacheTTL matches the backend's own response cache, so a tab never
// holds problems staler than the server would serve anyway.
const DefaultCacheTTL = time.Hour

const (
	cacheListKey       = "cc.problems.list"
	cacheProblemPrefix = "cc.problem."
)

// CachedSource is a read-through cache in front of a Source. Fresh entries
// are served without touching the upstream; expired entries are refetched.
// When the upstream fails and a stale entry exists, the stale entry is
// served so a flaky network degrades the pages instead of blanking them.
type CachedSource struct {
	src    Source
	store  localstore.Store
	ttl    time.Duration
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewCachedSource wraps src with a cache held in store. A ttl of zero or
// less means DefaultCacheTTL.
func NewCachedSource(src Source, store localstore.Store, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{
		src:    src,
		store:  store,
		ttl:    ttl,
		clock:  clockwork.NewRealClock(),
		logger: log.With().Str("component", "problems-cache").Logger(),
	}
}

// WithClock swaps the wall clock used for TTL checks.
func (c *CachedSource) WithClock(clock clockwork.Clock) *CachedSource {
	c.clock = clock
	return c
}

type cacheEntry struct {
	FetchedAt int64           `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// ListProblems returns the cached list when fresh, otherwise asks the
// upstream and caches the answer.
func (c *CachedSource) ListProblems(ctx context.Context) ([]Summary, error) {
	var cached []Summary
	haveCached, fresh := c.load(cacheListKey, &cached)
	if haveCached && fresh {
		return cached, nil
	}
	list, err := c.src.ListProblems(ctx)
	if err != nil {
		if haveCached {
			c.logger.Warn().Err(err).Msg("Problem list fetch failed, serving stale cache")
			return cached, nil
		}
		return nil, err
	}
	c.save(cacheListKey, list)
	return list, nil
}

// GetProblem returns the cached problem when fresh, otherwise asks the
// upstream and caches the answer.
func (c *CachedSource) GetProblem(ctx context.Context, id string) (Problem, error) {
	key := cacheProblemPrefix + id
	var cached Problem
	haveCached, fresh := c.load(key, &cached)
	if haveCached && fresh {
		return cached, nil
	}
	p, err := c.src.GetProblem(ctx, id)
	if err != nil {
		if haveCached {
			c.logger.Warn().Err(err).Str("problem_id", id).Msg("Problem fetch failed, serving stale cache")
			return cached, nil
		}
		return Problem{}, err
	}
	c.save(key, p)
	return p, nil
}

// Invalidate drops every cached entry. Admin mutations and problems-update
// broadcasts call it so the next read reflects the change.
func (c *CachedSource) Invalidate() {
	keys, err := c.store.Keys()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to list cache keys")
		return
	}
	for _, key := range keys {
		if key == cacheListKey || strings.HasPrefix(key, cacheProblemPrefix) {
			if err := c.store.Delete(key); err != nil {
				c.logger.Warn().Err(err).Str("key", key).Msg("Failed to drop cache entry")
			}
		}
	}
}

// load decodes the entry under key into out. It reports whether an entry
// exists at all and whether it is still fresh.
func (c *CachedSource) load(key string, out any) (ok, fresh bool) {
	raw, ok, err := c.store.Get(key)
	if err != nil || !ok {
		return false, false
	}
	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return false, false
	}
	if err := json.Unmarshal(entry.Data, out); err != nil {
		return false, false
	}
	age := c.clock.Now().Sub(time.UnixMilli(entry.FetchedAt))
	return true, age < c.ttl
}

func (c *CachedSource) save(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	entry := cacheEntry{FetchedAt: c.clock.Now().UnixMilli(), Data: data}
	encoded, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	if err := c.store.Set(key, string(encoded)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to store cache entry")
	}
}

var _ Source = (*CachedSource)(nil)
