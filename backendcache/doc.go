// Package backendcache decorates a tag-addressable cache backend with a
// process-local tier holding full cache items.
//
// CachedBackend presents the same contract as the backend it wraps, so call
// sites swap it in without changes:
//
//	base, _ := backendcache.NewMemoryBackend(cache.DefaultBackendConfig())
//	fronted, err := backendcache.New(base, cache.DefaultAdapterConfig(), nil)
//
// The local tier shares its storage and coherency logic with cache.LocalCache
// (TTL, capacity-bounded eviction, batch admission policy) and adds two
// behaviors specific to item objects: a key-exclusion filter applied on every
// admission path, and tag-intersection eviction that runs before a tag
// invalidation is forwarded to the backend.
//
// The decorator is an optimization layer only. Every write, delete, and
// invalidation is forwarded unconditionally, absence is always confirmed by
// the backend, and backend errors are never caught or masked.
package backendcache
