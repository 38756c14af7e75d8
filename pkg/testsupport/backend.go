// Package testsupport provides test doubles shared by the package-level test
// suites, chiefly a scripted backend that records every call it receives.
package testsupport

import (
	"context"
	"iter"
	"sync"

	"github.com/goliatone/go-runtime-cache/cache"
)

// Interface assertion to ensure the fake satisfies the backend contract.
var _ cache.Backend = (*FakeBackend)(nil)

// FakeBackend is an in-memory, call-recording implementation of
// cache.Backend. Tests preload Items, script failures via Err, and assert on
// Calls to verify what reached the backend (and, as importantly, what never
// did).
type FakeBackend struct {
	mu    sync.Mutex
	items map[string]cache.Item
	calls []string

	// Err, when set, is returned by every delegated operation. Decorators
	// must propagate it unchanged.
	Err error
}

// NewFakeBackend returns an empty fake.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{items: make(map[string]cache.Item)}
}

// Preload stores items directly, without recording calls.
func (f *FakeBackend) Preload(items ...cache.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		item.Hit = true
		f.items[item.Key] = item
	}
}

// Calls returns the recorded method names in call order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times method was called.
func (f *FakeBackend) CallCount(method string) int {
	n := 0
	for _, call := range f.Calls() {
		if call == method {
			n++
		}
	}
	return n
}

// Holds reports whether the fake currently stores key.
func (f *FakeBackend) Holds(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[key]
	return ok
}

func (f *FakeBackend) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
}

// Get implements cache.Backend.
func (f *FakeBackend) Get(ctx context.Context, key string) (cache.Item, error) {
	f.record("Get")
	if f.Err != nil {
		return cache.Item{Key: key}, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if item, ok := f.items[key]; ok {
		return item, nil
	}
	return cache.Item{Key: key}, nil
}

// GetMany implements cache.Backend.
func (f *FakeBackend) GetMany(ctx context.Context, keys []string) iter.Seq2[cache.Item, error] {
	f.record("GetMany")
	return func(yield func(cache.Item, error) bool) {
		for _, key := range keys {
			if f.Err != nil {
				yield(cache.Item{Key: key}, f.Err)
				return
			}
			f.mu.Lock()
			item, ok := f.items[key]
			f.mu.Unlock()
			if !ok {
				item = cache.Item{Key: key}
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Has implements cache.Backend.
func (f *FakeBackend) Has(ctx context.Context, key string) (bool, error) {
	f.record("Has")
	if f.Err != nil {
		return false, f.Err
	}
	return f.Holds(key), nil
}

// Put implements cache.Backend.
func (f *FakeBackend) Put(ctx context.Context, item cache.Item) error {
	f.record("Put")
	if f.Err != nil {
		return f.Err
	}
	f.Preload(item)
	return nil
}

// PutDeferred implements cache.Backend. The fake commits immediately, like
// the reference backend.
func (f *FakeBackend) PutDeferred(ctx context.Context, item cache.Item) error {
	f.record("PutDeferred")
	if f.Err != nil {
		return f.Err
	}
	f.Preload(item)
	return nil
}

// Delete implements cache.Backend.
func (f *FakeBackend) Delete(ctx context.Context, key string) error {
	f.record("Delete")
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

// DeleteMany implements cache.Backend.
func (f *FakeBackend) DeleteMany(ctx context.Context, keys []string) error {
	f.record("DeleteMany")
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.items, key)
	}
	return nil
}

// InvalidateTags implements cache.Backend, removing items whose tags
// intersect the invalidated set.
func (f *FakeBackend) InvalidateTags(ctx context.Context, tags []string) error {
	f.record("InvalidateTags")
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, item := range f.items {
		if tagsIntersect(item.Tags, tags) {
			delete(f.items, key)
		}
	}
	return nil
}

// Clear implements cache.Backend.
func (f *FakeBackend) Clear(ctx context.Context) error {
	f.record("Clear")
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]cache.Item)
	return nil
}

func tagsIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
