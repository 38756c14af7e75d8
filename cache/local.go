package cache

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-runtime-cache/internal/entrystore"
)

// LocalCache is the process-local hot tier used directly by read-through call
// sites. It wraps the bounded entry store with TTL checks, capacity-bounded
// admission, bulk-load bypass, and the cross-instance global-epoch check.
//
// A LocalCache expects single-threaded use within one unit of work; callers
// spanning goroutines must own independent instances. The only shared state is
// the package-level global epoch.
type LocalCache struct {
	id      string
	store   *entrystore.Store[any]
	enabled bool
	sink    Sink

	// epoch is the global epoch value this instance last observed.
	epoch int64
}

// NewLocalCache builds a local tier from cfg. A nil sink disables event
// emission.
func NewLocalCache(cfg Config, sink Sink) (*LocalCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &LocalCache{
		id:      uuid.NewString(),
		store:   entrystore.New[any](cfg.TTL, cfg.Capacity, cfg.BatchBypassFraction, cfg.EvictionFraction),
		enabled: cfg.Enabled,
		sink:    sink,
		epoch:   globalEpoch.Load(),
	}, nil
}

// ID returns the instance identifier carried on emitted events.
func (c *LocalCache) ID() string {
	return c.id
}

// Get resolves key through the local tier. When the tier is disabled, or the
// global epoch advanced since the last read, the call reports absent and the
// caller re-fetches from the backend.
func (c *LocalCache) Get(ctx context.Context, key string) (any, bool) {
	if !c.enabled || c.syncEpoch() {
		c.emit(ctx, key, KindMiss)
		return nil, false
	}
	value, ok := c.store.Get(key)
	if !ok {
		c.emit(ctx, key, KindMiss)
		return nil, false
	}
	c.emit(ctx, key, KindMemoryHit)
	return value, true
}

// GetMany yields key/value pairs for the keys the tier currently holds, in
// request order, as a lazy, finite, non-restartable sequence. Keys the tier
// cannot serve are skipped; callers diff against the requested set to find
// what still needs fetching.
func (c *LocalCache) GetMany(ctx context.Context, keys []string) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if !c.enabled || c.syncEpoch() {
			for _, key := range keys {
				c.emit(ctx, key, KindMiss)
			}
			return
		}
		for _, key := range keys {
			value, ok := c.store.Get(key)
			if !ok {
				c.emit(ctx, key, KindMiss)
				continue
			}
			c.emit(ctx, key, KindMemoryHit)
			if !yield(key, value) {
				return
			}
		}
	}
}

// Has reports whether key resolves to a live local entry.
func (c *LocalCache) Has(ctx context.Context, key string) bool {
	if !c.enabled || c.syncEpoch() {
		return false
	}
	return c.store.Has(key)
}

// PutMany admits a batch of values. keysFn yields each value's ordered key
// set (primary first, aliases after); values with no keys are skipped. When
// listKey is non-empty the whole batch is additionally stored as one entry
// under it, bypassing the batch-size heuristic. No-op while disabled.
func (c *LocalCache) PutMany(ctx context.Context, values []any, keysFn func(any) []string, listKey string) {
	if !c.enabled {
		return
	}
	c.syncEpoch()
	c.store.PutMany(values, keysFn)
	if listKey != "" {
		c.store.Put(listKey, values)
	}
}

// DeleteMany removes each key, resolving aliases to their primary entry.
// No-op while disabled.
func (c *LocalCache) DeleteMany(ctx context.Context, keys ...string) {
	if !c.enabled {
		return
	}
	c.store.DeleteMany(keys...)
}

// Clear empties local storage. With global set it also advances the shared
// epoch, so every sibling instance clears itself on its next read. Clear works
// even while the tier is disabled.
func (c *LocalCache) Clear(global bool) {
	c.store.Clear()
	if global {
		c.epoch = advanceGlobalEpoch()
		slog.Debug("runtime cache: global epoch advanced", "cache", c.id, "epoch", c.epoch)
	}
}

// syncEpoch compares the remembered epoch against the shared one, clearing the
// store on mismatch. It reports whether a clear happened, in which case the
// current read must report absent.
func (c *LocalCache) syncEpoch() bool {
	shared := globalEpoch.Load()
	if shared == c.epoch {
		return false
	}
	c.store.Clear()
	c.epoch = shared
	slog.Debug("runtime cache: adopted new global epoch", "cache", c.id, "epoch", shared)
	return true
}

func (c *LocalCache) emit(ctx context.Context, key string, kind Kind) {
	c.sink.Record(Event{
		Cache: c.id,
		Op:    OperationFromContext(ctx),
		Key:   key,
		Kind:  kind,
	})
}

// setNow overrides the store clock in tests.
func (c *LocalCache) setNow(now func() time.Time) {
	c.store.SetNow(now)
}
