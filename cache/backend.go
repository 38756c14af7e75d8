package cache

import (
	"context"
	"iter"
)

// Item is the unit of exchange with a tag-addressable cache backend.
// Hit reports whether the backend (or local tier) actually held the key;
// Tags is the invalidation-tag set the backend previously associated with it.
type Item struct {
	Key   string
	Value any
	Hit   bool
	Tags  []string
}

// Backend is the contract of the shared, tag-addressable persistent cache the
// local tier fronts. Implementations own their persistence, network, and
// clustering semantics; this package only consumes the contract.
//
// GetMany returns a lazy, finite, non-restartable sequence of (Item, error)
// pairs. A batch-level failure is yielded once with a zero-hit Item carrying
// the requested key, then the sequence ends.
type Backend interface {
	Get(ctx context.Context, key string) (Item, error)
	GetMany(ctx context.Context, keys []string) iter.Seq2[Item, error]
	Has(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, item Item) error
	PutDeferred(ctx context.Context, item Item) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	InvalidateTags(ctx context.Context, tags []string) error
	Clear(ctx context.Context) error
}
