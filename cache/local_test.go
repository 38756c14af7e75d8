package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// recordingSink captures every emitted event for assertions.
type recordingSink struct {
	events []Event
}

func (s *recordingSink) Record(ev Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) kinds() []Kind {
	kinds := make([]Kind, len(s.events))
	for i, ev := range s.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TTL = time.Second
	cfg.Capacity = 100
	return cfg
}

func mustLocalCache(t *testing.T, cfg Config, sink Sink) *LocalCache {
	t.Helper()
	c, err := NewLocalCache(cfg, sink)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	return c
}

func singleKey(keys ...string) func(any) []string {
	return func(any) []string { return keys }
}

func TestLocalCache_PutManyAndGetThroughAliases(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	c.PutMany(ctx, []any{"payload"}, singleKey("id:1", "slug:one"), "")

	for _, key := range []string{"id:1", "slug:one"} {
		got, ok := c.Get(ctx, key)
		if !ok {
			t.Fatalf("expected %q to resolve", key)
		}
		if got != "payload" {
			t.Errorf("Get(%q) = %v, want %q", key, got, "payload")
		}
	}
}

func TestLocalCache_ListKeyStoresWholeBatch(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	values := []any{"a", "b", "c"}
	c.PutMany(ctx, values, func(v any) []string { return []string{v.(string)} }, "all")

	got, ok := c.Get(ctx, "all")
	if !ok {
		t.Fatal("expected list entry under the list key")
	}
	batch, ok := got.([]any)
	if !ok || len(batch) != 3 {
		t.Errorf("Get(all) = %#v, want the 3-element batch", got)
	}
}

func TestLocalCache_DisabledReportsAbsentAndSkipsWrites(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Enabled = false
	c := mustLocalCache(t, cfg, nil)

	c.PutMany(ctx, []any{"payload"}, singleKey("k"), "")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("disabled cache must report absent")
	}
	if c.Has(ctx, "k") {
		t.Error("disabled cache must report absent from Has")
	}

	// Clear still works while disabled.
	c.Clear(false)
}

func TestLocalCache_GetManyYieldsHitsInRequestOrder(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	c.PutMany(ctx, []any{"v1", "v3"}, func(v any) []string {
		if v == "v1" {
			return []string{"k1"}
		}
		return []string{"k3"}
	}, "")

	var gotKeys []string
	for key, value := range c.GetMany(ctx, []string{"k1", "k2", "k3"}) {
		gotKeys = append(gotKeys, key)
		if value == nil {
			t.Errorf("nil value yielded for %q", key)
		}
	}

	if len(gotKeys) != 2 || gotKeys[0] != "k1" || gotKeys[1] != "k3" {
		t.Errorf("GetMany yielded %v, want [k1 k3]", gotKeys)
	}
}

func TestLocalCache_GetManyStopsWhenCallerBreaks(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		c.PutMany(ctx, []any{key}, singleKey(key), "")
	}

	n := 0
	for range c.GetMany(ctx, []string{"k0", "k1", "k2", "k3", "k4"}) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d pairs after break, want 2", n)
	}
}

func TestLocalCache_TTLExpiryOnRead(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	clock := time.Unix(1700000000, 0)
	c.setNow(func() time.Time { return clock })

	c.PutMany(ctx, []any{"payload"}, singleKey("k"), "")

	clock = clock.Add(999 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatal("entry should be live just before TTL")
	}

	clock = clock.Add(2 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry should be absent just past TTL")
	}
}

func TestLocalCache_GlobalEpochPropagation(t *testing.T) {
	ctx := context.Background()
	a := mustLocalCache(t, testConfig(), nil)
	b := mustLocalCache(t, testConfig(), nil)

	b.PutMany(ctx, []any{"payload"}, singleKey("k"), "")
	if _, ok := b.Get(ctx, "k"); !ok {
		t.Fatal("precondition: b should hold k")
	}

	// A global clear on one instance must invalidate sibling instances it
	// holds no reference to.
	a.Clear(true)

	if _, ok := b.Get(ctx, "k"); ok {
		t.Error("b must report absent after a's global clear")
	}

	// b adopted the new epoch; subsequent writes are visible again.
	b.PutMany(ctx, []any{"payload"}, singleKey("k"), "")
	if _, ok := b.Get(ctx, "k"); !ok {
		t.Error("b should serve entries admitted after adopting the epoch")
	}
}

func TestLocalCache_LocalClearDoesNotTouchSiblings(t *testing.T) {
	ctx := context.Background()
	a := mustLocalCache(t, testConfig(), nil)
	b := mustLocalCache(t, testConfig(), nil)

	b.PutMany(ctx, []any{"payload"}, singleKey("k"), "")
	a.Clear(false)

	if _, ok := b.Get(ctx, "k"); !ok {
		t.Error("a local clear must not invalidate sibling instances")
	}
}

func TestLocalCache_EmitsEvents(t *testing.T) {
	sink := &recordingSink{}
	c := mustLocalCache(t, testConfig(), sink)
	ctx := WithOperation(context.Background(), "ContentRepository.FindByID")

	c.PutMany(ctx, []any{"payload"}, singleKey("k"), "")
	c.Get(ctx, "k")
	c.Get(ctx, "missing")

	kinds := sink.kinds()
	if len(kinds) != 2 || kinds[0] != KindMemoryHit || kinds[1] != KindMiss {
		t.Fatalf("recorded kinds %v, want [memory_hit miss]", kinds)
	}
	for _, ev := range sink.events {
		if ev.Op != "ContentRepository.FindByID" {
			t.Errorf("event op = %q, want the context operation", ev.Op)
		}
		if ev.Cache != c.ID() {
			t.Errorf("event cache = %q, want instance id %q", ev.Cache, c.ID())
		}
	}
}

func TestGetOrFetch_FetchesOnceThenServesLocally(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	fetches := 0
	fetch := func(ctx context.Context) (string, error) {
		fetches++
		return "fetched", nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrFetch(ctx, c, "k", nil, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if got != "fetched" {
			t.Errorf("GetOrFetch = %q, want %q", got, "fetched")
		}
	}
	if fetches != 1 {
		t.Errorf("fetch ran %d times, want 1", fetches)
	}
}

func TestGetOrFetch_AdmitsUnderAllKeys(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	_, err := GetOrFetch(ctx, c, "id:1",
		func(v string) []string { return []string{"id:1", "slug:" + v} },
		func(ctx context.Context) (string, error) { return "one", nil },
	)
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}

	if _, ok := c.Get(ctx, "slug:one"); !ok {
		t.Error("expected the fetched value to resolve through its alias")
	}
}

func TestGetOrFetch_ErrorPropagatesUnchanged(t *testing.T) {
	ctx := context.Background()
	c := mustLocalCache(t, testConfig(), nil)

	wantErr := errors.New("source of truth down")
	_, err := GetOrFetch(ctx, c, "k", nil, func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrFetch error = %v, want %v", err, wantErr)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("nothing must be admitted for a failed fetch")
	}
}

func TestNewLocalCache_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 0
	if _, err := NewLocalCache(cfg, nil); err == nil {
		t.Error("expected an error for zero capacity")
	}
}
