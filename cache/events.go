package cache

// Kind classifies a cache event emitted to the instrumentation sink.
type Kind string

const (
	// KindMemoryHit marks a read served entirely from the local tier.
	KindMemoryHit Kind = "memory_hit"
	// KindHit marks a read that missed locally but was satisfied by the backend.
	KindHit Kind = "hit"
	// KindMiss marks a read neither tier could satisfy.
	KindMiss Kind = "miss"
)

// Event describes a single cache read outcome. Cache carries the emitting
// instance id, Op the logical calling operation taken from the context (see
// WithOperation), and Key the lookup key as requested by the caller.
type Event struct {
	Cache string
	Op    string
	Key   string
	Kind  Kind
}

// Sink receives cache events. Implementations must be cheap: Record is called
// synchronously on the read path. See pkg/stats for the provided sinks.
type Sink interface {
	Record(Event)
}

// NopSink discards every event. Used when no instrumentation is wired.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Event) {}
