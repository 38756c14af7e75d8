// Package entrystore implements the bounded, TTL-pruned keyed storage shared
// by both local cache tiers: primary-key entries, secondary-key aliasing, and
// capacity-driven eviction. It is a pure data structure, performs no I/O, and
// expects single-threaded use; callers that span goroutines must synchronize
// around it or own independent stores.
package entrystore

import (
	"slices"
	"time"
)

// entry pairs a payload with its admission bookkeeping. seq orders entries by
// insertion for eviction; insertedAt drives TTL expiry.
type entry[V any] struct {
	value      V
	insertedAt time.Time
	seq        uint64
}

// Store holds values keyed by a primary key, with any number of secondary
// alias keys resolving to the same value. Reads prune expired entries lazily,
// writes enforce the capacity bound by evicting the oldest entries first.
type Store[V any] struct {
	ttl           time.Duration
	capacity      int
	batchFraction float64
	evictFraction float64

	entries map[string]entry[V]
	aliases map[string]string // alias key -> primary key

	nextSeq uint64

	// now is swapped in tests to exercise TTL boundaries without sleeping.
	now func() time.Time
}

// New returns an empty store. Callers validate configuration before
// constructing; the fractions follow cache.Config semantics (batchFraction of
// capacity rejects a batch, evictFraction of entries leaves on each vacuum).
func New[V any](ttl time.Duration, capacity int, batchFraction, evictFraction float64) *Store[V] {
	return &Store[V]{
		ttl:           ttl,
		capacity:      capacity,
		batchFraction: batchFraction,
		evictFraction: evictFraction,
		entries:       make(map[string]entry[V]),
		aliases:       make(map[string]string),
		now:           time.Now,
	}
}

// Len reports the number of primary entries currently stored.
func (s *Store[V]) Len() int {
	return len(s.entries)
}

// Get resolves key directly or through the alias index and returns the stored
// value. Every over-age entry is purged first, together with its aliases and
// stamp, so memory stays bounded even for keys that are never re-queried.
func (s *Store[V]) Get(key string) (V, bool) {
	s.sweep()
	e, ok := s.entries[s.resolve(key)]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Has reports whether key resolves to a live entry. Same pruning semantics as
// Get.
func (s *Store[V]) Has(key string) bool {
	s.sweep()
	_, ok := s.entries[s.resolve(key)]
	return ok
}

// Put admits a single entry under key with no aliases. It bypasses the
// batch-size heuristic (list-style entries are stored regardless of batch
// size) but still respects the capacity bound.
func (s *Store[V]) Put(key string, value V) {
	s.ensureRoom(1)
	s.insert(key, value)
}

// PutMany admits a batch. keysFn yields the ordered key set of each value: the
// first key is the primary storage location, the rest become aliases. A value
// with no keys is skipped; a malformed entry must not abort bulk admission.
//
// The admission policy is evaluated once, before anything is written: a batch
// at or above batchFraction of capacity is rejected in full, since bulk loads
// would immediately evict most of the store and provide no reuse benefit.
func (s *Store[V]) PutMany(values []V, keysFn func(V) []string) {
	if len(values) == 0 {
		return
	}
	if float64(len(values)) >= s.batchFraction*float64(s.capacity) {
		return
	}
	s.ensureRoom(len(values))
	for _, value := range values {
		keys := keysFn(value)
		if len(keys) == 0 {
			continue
		}
		s.insert(keys[0], value)
		for _, alias := range keys[1:] {
			s.aliases[alias] = keys[0]
		}
	}
}

// DeleteMany removes each key. Alias keys are resolved to their primary; the
// primary entry, its stamp, and every alias sharing that primary are removed
// together so no dangling alias survives.
func (s *Store[V]) DeleteMany(keys ...string) {
	for _, key := range keys {
		s.deletePrimary(s.resolve(key))
	}
}

// DeleteFunc removes every entry the match predicate selects, including its
// aliases. Used for tag-intersection invalidation.
func (s *Store[V]) DeleteFunc(match func(key string, value V) bool) {
	var victims []string
	for key, e := range s.entries {
		if match(key, e.value) {
			victims = append(victims, key)
		}
	}
	for _, key := range victims {
		s.deletePrimary(key)
	}
}

// Clear empties primary storage and the alias index.
func (s *Store[V]) Clear() {
	s.entries = make(map[string]entry[V])
	s.aliases = make(map[string]string)
}

// SetNow overrides the store clock. Test hook.
func (s *Store[V]) SetNow(now func() time.Time) {
	s.now = now
}

func (s *Store[V]) resolve(key string) string {
	if _, ok := s.entries[key]; ok {
		return key
	}
	if primary, ok := s.aliases[key]; ok {
		return primary
	}
	return key
}

func (s *Store[V]) insert(key string, value V) {
	s.nextSeq++
	s.entries[key] = entry[V]{value: value, insertedAt: s.now(), seq: s.nextSeq}
}

func (s *Store[V]) deletePrimary(primary string) {
	if _, ok := s.entries[primary]; !ok {
		return
	}
	delete(s.entries, primary)
	for alias, p := range s.aliases {
		if p == primary {
			delete(s.aliases, alias)
		}
	}
}

// sweep purges every entry whose age exceeds the TTL.
func (s *Store[V]) sweep() {
	now := s.now()
	var stale []string
	for key, e := range s.entries {
		if now.Sub(e.insertedAt) > s.ttl {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		s.deletePrimary(key)
	}
}

// ensureRoom vacuums when admitting incoming entries would reach the capacity
// bound. Eviction is triggered only by capacity pressure; TTL pruning already
// happened lazily on reads.
func (s *Store[V]) ensureRoom(incoming int) {
	if len(s.entries)+incoming < s.capacity {
		return
	}
	s.vacuum()
}

// vacuum removes the oldest evictFraction of primary entries by insertion
// order (FIFO, not last access: per-read bookkeeping is not worth it when
// entries outlive their usefulness within seconds anyway), at least one, then
// drops any alias whose primary no longer exists.
func (s *Store[V]) vacuum() {
	n := len(s.entries)
	if n == 0 {
		return
	}
	victims := int(float64(n) * s.evictFraction)
	if victims < 1 {
		victims = 1
	}

	keys := make([]string, 0, n)
	for key := range s.entries {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		sa, sb := s.entries[a].seq, s.entries[b].seq
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})
	for _, key := range keys[:victims] {
		delete(s.entries, key)
	}

	for alias, primary := range s.aliases {
		if _, ok := s.entries[primary]; !ok {
			delete(s.aliases, alias)
		}
	}
}
