// Package di wires the cache tiers, the backend, and the instrumentation sink
// together for applications that want one place to configure the stack.
package di

import (
	"github.com/goliatone/go-runtime-cache/backendcache"
	"github.com/goliatone/go-runtime-cache/cache"
	"github.com/goliatone/go-runtime-cache/pkg/stats"
)

// Container manages the shared pieces of the cache stack: the backend, the
// instrumentation sink, and the key serializer. Cache tiers themselves are
// single-threaded by design, so the container hands out fresh instances per
// unit of work rather than sharing one.
type Container struct {
	localCfg   cache.Config
	adapterCfg cache.AdapterConfig
	backend    cache.Backend
	sink       cache.Sink
	serializer cache.KeySerializer
}

// NewContainer builds a container around the given backend. A nil backend
// gets the in-memory reference backend; a nil sink gets a stats.Recorder.
func NewContainer(localCfg cache.Config, adapterCfg cache.AdapterConfig, backend cache.Backend, sink cache.Sink) (*Container, error) {
	if err := localCfg.Validate(); err != nil {
		return nil, err
	}
	if err := adapterCfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		memory, err := backendcache.NewMemoryBackend(cache.DefaultBackendConfig())
		if err != nil {
			return nil, err
		}
		backend = memory
	}
	if sink == nil {
		sink = stats.NewRecorder()
	}

	return &Container{
		localCfg:   localCfg,
		adapterCfg: adapterCfg,
		backend:    backend,
		sink:       sink,
		serializer: cache.NewDefaultKeySerializer(),
	}, nil
}

// NewContainerWithDefaults builds a container with default configuration, the
// in-memory backend, and a counter recorder sink.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig(), cache.DefaultAdapterConfig(), nil, nil)
}

// NewLocalCache returns a fresh local tier for one unit of work. Instances
// share nothing beyond the global epoch, so each request (or thread) must get
// its own.
func (c *Container) NewLocalCache() (*cache.LocalCache, error) {
	return cache.NewLocalCache(c.localCfg, c.sink)
}

// NewCachedBackend returns a fresh backend-fronting tier for one unit of
// work, all decorating the same shared backend.
func (c *Container) NewCachedBackend() (*backendcache.CachedBackend, error) {
	return backendcache.New(c.backend, c.adapterCfg, c.sink)
}

// Backend returns the undecorated backend for callers that must bypass the
// local tier.
func (c *Container) Backend() cache.Backend {
	return c.backend
}

// Sink returns the instrumentation sink events are emitted into.
func (c *Container) Sink() cache.Sink {
	return c.sink
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.serializer
}
