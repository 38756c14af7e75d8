// Package stats provides the instrumentation sinks the cache core emits its
// hit/miss/memory-hit events into, plus argument fingerprinting for key
// construction. Sinks observe the cache; nothing here participates in its
// correctness.
package stats

import (
	"github.com/goliatone/go-runtime-cache/cache"
	"github.com/puzpuzpuz/xsync/v3"
)

// Interface assertion to ensure Recorder satisfies the sink contract.
var _ cache.Sink = (*Recorder)(nil)

// Recorder counts events per (operation, kind). It is safe for use from
// multiple cache instances running on different goroutines, which is why it
// leans on xsync rather than plain maps.
type Recorder struct {
	counters *xsync.MapOf[string, *xsync.Counter]
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{counters: xsync.NewMapOf[string, *xsync.Counter]()}
}

// Record implements cache.Sink.
func (r *Recorder) Record(ev cache.Event) {
	counter, _ := r.counters.LoadOrCompute(counterKey(ev.Op, ev.Kind), func() *xsync.Counter {
		return xsync.NewCounter()
	})
	counter.Inc()
}

// Count returns how many events of kind were recorded for op. Op names are
// normalized the same way Record normalizes them.
func (r *Recorder) Count(op string, kind cache.Kind) int64 {
	counter, ok := r.counters.Load(counterKey(op, kind))
	if !ok {
		return 0
	}
	return counter.Value()
}

// Snapshot returns the current counters keyed by "op/kind".
func (r *Recorder) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	r.counters.Range(func(key string, counter *xsync.Counter) bool {
		out[key] = counter.Value()
		return true
	})
	return out
}

func counterKey(op string, kind cache.Kind) string {
	return normalizeOp(op) + "/" + string(kind)
}
