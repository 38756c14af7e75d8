package backendcache

import (
	"github.com/goliatone/go-runtime-cache/cache"
	"github.com/goliatone/go-runtime-cache/internal/backendinfra"
)

// NewMemoryBackend constructs the in-memory reference implementation of the
// backend contract. It is the default backing store for tests, examples, and
// single-process deployments; production callers front their real persistent
// backend instead.
func NewMemoryBackend(cfg cache.BackendConfig) (cache.Backend, error) {
	return backendinfra.NewSturdycBackend(cfg)
}
