// Package backendinfra provides the in-memory reference implementation of the
// cache.Backend contract, built on a sturdyc client plus a tag index. It
// stands in for the shared persistent backend in tests, examples, and single
// process deployments; it implements none of that backend's persistence or
// network semantics.
package backendinfra

import (
	"context"
	"iter"
	"sync"

	"github.com/goliatone/go-runtime-cache/cache"
	"github.com/viccon/sturdyc"
)

// Interface assertion to ensure the backend satisfies the contract.
var _ cache.Backend = (*SturdycBackend)(nil)

// SturdycBackend stores full cache items in a sturdyc client and keeps a
// tag -> keys index for invalidate-by-tag. Unlike the local tiers it is shared
// across instances and goroutines, so the tag index is mutex-guarded; sturdyc
// itself is already safe for concurrent use.
type SturdycBackend struct {
	client *sturdyc.Client[cache.Item]

	mu     sync.Mutex
	tagged map[string]map[string]struct{} // tag -> keys carrying it
	tags   map[string][]string            // key -> recorded tags
}

// NewSturdycBackend validates cfg and builds the backend.
func NewSturdycBackend(cfg cache.BackendConfig) (*SturdycBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SturdycBackend{
		client: sturdyc.New[cache.Item](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage),
		tagged: make(map[string]map[string]struct{}),
		tags:   make(map[string][]string),
	}, nil
}

// Get returns the stored item, or a zero-hit item carrying the key.
func (b *SturdycBackend) Get(ctx context.Context, key string) (cache.Item, error) {
	item, ok := b.client.Get(key)
	if !ok {
		return cache.Item{Key: key}, nil
	}
	return item, nil
}

// GetMany yields one (Item, error) pair per requested key, lazily.
func (b *SturdycBackend) GetMany(ctx context.Context, keys []string) iter.Seq2[cache.Item, error] {
	return func(yield func(cache.Item, error) bool) {
		for _, key := range keys {
			item, err := b.Get(ctx, key)
			if !yield(item, err) {
				return
			}
		}
	}
}

// Has reports whether the backend holds key.
func (b *SturdycBackend) Has(ctx context.Context, key string) (bool, error) {
	_, ok := b.client.Get(key)
	return ok, nil
}

// Put stores item and records its tags in the index.
func (b *SturdycBackend) Put(ctx context.Context, item cache.Item) error {
	item.Hit = true
	b.client.Set(item.Key, item)
	b.index(item.Key, item.Tags)
	return nil
}

// PutDeferred commits immediately; an in-memory backend has no write queue to
// defer into.
func (b *SturdycBackend) PutDeferred(ctx context.Context, item cache.Item) error {
	return b.Put(ctx, item)
}

// Delete removes key and unindexes its tags.
func (b *SturdycBackend) Delete(ctx context.Context, key string) error {
	b.unindex(key)
	b.client.Delete(key)
	return nil
}

// DeleteMany removes each key.
func (b *SturdycBackend) DeleteMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := b.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateTags removes every item carrying at least one of the given tags.
func (b *SturdycBackend) InvalidateTags(ctx context.Context, tags []string) error {
	for _, key := range b.keysForTags(tags) {
		if err := b.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every stored item.
func (b *SturdycBackend) Clear(ctx context.Context) error {
	for _, key := range b.client.ScanKeys() {
		b.client.Delete(key)
	}
	b.mu.Lock()
	b.tagged = make(map[string]map[string]struct{})
	b.tags = make(map[string][]string)
	b.mu.Unlock()
	return nil
}

func (b *SturdycBackend) index(key string, tags []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, tag := range b.tags[key] {
		delete(b.tagged[tag], key)
	}
	b.tags[key] = append([]string(nil), tags...)
	for _, tag := range tags {
		keys, ok := b.tagged[tag]
		if !ok {
			keys = make(map[string]struct{})
			b.tagged[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (b *SturdycBackend) unindex(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, tag := range b.tags[key] {
		delete(b.tagged[tag], key)
	}
	delete(b.tags, key)
}

func (b *SturdycBackend) keysForTags(tags []string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]struct{})
	var keys []string
	for _, tag := range tags {
		for key := range b.tagged[tag] {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
