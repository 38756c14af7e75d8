// Package cache provides the public surface of the two-tier runtime cache: a
// process-local, capacity- and time-bounded hot tier fronting a shared,
// tag-addressable backend.
//
// # Overview
//
// The package exports:
//
//   - LocalCache: the hot tier used directly by read-through call sites, with
//     secondary-key aliasing, lazy TTL expiry, capacity-bounded eviction, and
//     the cross-instance global-epoch clear.
//   - Backend and Item: the contract of the persistent backend the tier
//     fronts. The backendcache package decorates any Backend with the same
//     coherency logic specialized for full cache items.
//   - Sink and Event: the instrumentation boundary. The core only emits
//     hit/miss/memory-hit events; pkg/stats provides sink implementations.
//   - KeySerializer: stable cache-key construction from method names and
//     arguments.
//
// # Basic usage
//
//	local, err := cache.NewLocalCache(cache.DefaultConfig(), nil)
//	if err != nil {
//		return err
//	}
//	ctx := cache.WithOperation(ctx, "ContentRepository.FindByID")
//	record, err := cache.GetOrFetch(ctx, local, key,
//		func(r Record) []string { return []string{r.ID, "slug:" + r.Slug} },
//		func(ctx context.Context) (Record, error) { return load(ctx, key) },
//	)
//
// Every instance is single-threaded by design: operations run to completion
// on the caller's goroutine, no background maintenance goroutine exists, and
// all bookkeeping happens synchronously on the read/write path. Use one
// instance per unit of work (pkg/di provides a factory), or add external
// synchronization.
//
// # Global clears
//
// LocalCache.Clear(true) advances a package-owned epoch marker. Sibling
// instances hold no references to each other; each compares its remembered
// epoch on every read and clears itself when the marker moved. The worst case
// under concurrent use is a single stale read before the next access clears
// it.
package cache
