package backendcache

import (
	"context"
	"iter"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/goliatone/go-runtime-cache/cache"
	"github.com/goliatone/go-runtime-cache/internal/entrystore"
)

// Interface assertion to ensure CachedBackend presents the backend contract.
var _ cache.Backend = (*CachedBackend)(nil)

// CachedBackend decorates a tag-addressable backend with a local tier holding
// full cache items. Every operation forwards to the backend for correctness;
// the local tier only absorbs repeated reads within a unit of work and must
// never be the sole source of truth. Backend errors propagate unchanged.
type CachedBackend struct {
	id      string
	base    cache.Backend
	store   *entrystore.Store[cache.Item]
	exclude *regexp.Regexp
	sink    cache.Sink
	enabled bool
}

// New wraps base with a local tier configured by cfg. A nil sink disables
// event emission. An exclusion pattern that does not compile is a
// configuration error surfaced here, never on the read path.
func New(base cache.Backend, cfg cache.AdapterConfig, sink cache.Sink) (*CachedBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = cache.NopSink{}
	}

	var exclude *regexp.Regexp
	if cfg.ExcludePattern != "" {
		compiled, err := regexp.Compile(cfg.ExcludePattern)
		if err != nil {
			return nil, err
		}
		exclude = compiled
	}

	return &CachedBackend{
		id:      uuid.NewString(),
		base:    base,
		store:   entrystore.New[cache.Item](cfg.TTL, cfg.Capacity, cfg.BatchBypassFraction, cfg.EvictionFraction),
		exclude: exclude,
		sink:    sink,
		enabled: cfg.Enabled,
	}, nil
}

// Get serves key from the local tier when fresh; otherwise it fetches from
// the backend and admits a backend hit before returning it.
func (c *CachedBackend) Get(ctx context.Context, key string) (cache.Item, error) {
	if item, ok := c.local(key); ok {
		c.emit(ctx, key, cache.KindMemoryHit)
		return item, nil
	}

	item, err := c.base.Get(ctx, key)
	if err != nil {
		return item, err
	}
	if item.Hit {
		c.admit(item)
		c.emit(ctx, key, cache.KindHit)
	} else {
		c.emit(ctx, key, cache.KindMiss)
	}
	return item, nil
}

// GetMany yields one (Item, error) pair per requested key: locally held keys
// first, straight from memory, then the remainder fetched from the backend in
// a single batch. Backend-satisfied keys are admitted together in one batch
// write once the backend sequence is drained.
func (c *CachedBackend) GetMany(ctx context.Context, keys []string) iter.Seq2[cache.Item, error] {
	return func(yield func(cache.Item, error) bool) {
		var remainder []string
		for _, key := range keys {
			item, ok := c.local(key)
			if !ok {
				remainder = append(remainder, key)
				continue
			}
			c.emit(ctx, key, cache.KindMemoryHit)
			if !yield(item, nil) {
				return
			}
		}
		if len(remainder) == 0 {
			return
		}

		var admitted []cache.Item
		for item, err := range c.base.GetMany(ctx, remainder) {
			if err != nil {
				yield(item, err)
				return
			}
			if item.Hit {
				admitted = append(admitted, item)
				c.emit(ctx, item.Key, cache.KindHit)
			} else {
				c.emit(ctx, item.Key, cache.KindMiss)
			}
			if !yield(item, nil) {
				return
			}
		}
		c.admitBatch(admitted)
	}
}

// Has short-circuits on a local hit but always defers absence to the backend:
// the local tier may simply not have cached a key the backend holds.
func (c *CachedBackend) Has(ctx context.Context, key string) (bool, error) {
	if _, ok := c.local(key); ok {
		return true, nil
	}
	return c.base.Has(ctx, key)
}

// Put admits the item locally, then forwards to the backend.
func (c *CachedBackend) Put(ctx context.Context, item cache.Item) error {
	item.Hit = true
	c.admit(item)
	return c.base.Put(ctx, item)
}

// PutDeferred admits the item locally before forwarding: local visibility
// must not wait on the backend's deferred-commit semantics.
func (c *CachedBackend) PutDeferred(ctx context.Context, item cache.Item) error {
	item.Hit = true
	c.admit(item)
	return c.base.PutDeferred(ctx, item)
}

// Delete removes key from the local tier, then forwards.
func (c *CachedBackend) Delete(ctx context.Context, key string) error {
	c.store.DeleteMany(key)
	return c.base.Delete(ctx, key)
}

// DeleteMany removes each key from the local tier, then forwards.
func (c *CachedBackend) DeleteMany(ctx context.Context, keys []string) error {
	c.store.DeleteMany(keys...)
	return c.base.DeleteMany(ctx, keys)
}

// InvalidateTags evicts every locally held item whose recorded tags intersect
// the invalidated set, then forwards the invalidation to the backend exactly
// once. Local eviction happens before the forward so no caller can observe a
// stale local hit for an invalidated tag after this call returns.
func (c *CachedBackend) InvalidateTags(ctx context.Context, tags []string) error {
	c.store.DeleteFunc(func(_ string, item cache.Item) bool {
		return intersects(item.Tags, tags)
	})
	slog.Debug("runtime cache: tag invalidation", "cache", c.id, "tags", tags)
	return c.base.InvalidateTags(ctx, tags)
}

// Clear empties the local tier and forwards.
func (c *CachedBackend) Clear(ctx context.Context) error {
	c.store.Clear()
	return c.base.Clear(ctx)
}

func (c *CachedBackend) local(key string) (cache.Item, bool) {
	if !c.enabled {
		return cache.Item{}, false
	}
	return c.store.Get(key)
}

// admit stores a single item locally, subject to the exclusion filter. Single
// admissions use the same capacity-checked path as list entries.
func (c *CachedBackend) admit(item cache.Item) {
	if !c.enabled || c.excluded(item.Key) {
		return
	}
	c.store.Put(item.Key, item)
}

// admitBatch stores a batch of backend hits in one write, subject to the
// exclusion filter and the batch admission policy.
func (c *CachedBackend) admitBatch(items []cache.Item) {
	if !c.enabled || len(items) == 0 {
		return
	}
	kept := items[:0]
	for _, item := range items {
		if !c.excluded(item.Key) {
			kept = append(kept, item)
		}
	}
	c.store.PutMany(kept, func(item cache.Item) []string {
		return []string{item.Key}
	})
}

// excluded reports whether key belongs to a family configured to bypass the
// local tier. Some key families are cheap to fetch but vary by too many
// dimensions to benefit from a small bounded cache.
func (c *CachedBackend) excluded(key string) bool {
	return c.exclude != nil && c.exclude.MatchString(key)
}

func (c *CachedBackend) emit(ctx context.Context, key string, kind cache.Kind) {
	c.sink.Record(cache.Event{
		Cache: c.id,
		Op:    cache.OperationFromContext(ctx),
		Key:   key,
		Kind:  kind,
	})
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
