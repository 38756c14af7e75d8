package stats

import (
	"github.com/goliatone/go-runtime-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Interface assertion to ensure PrometheusSink satisfies the sink contract.
var _ cache.Sink = (*PrometheusSink)(nil)

// PrometheusSink exports cache events as a counter vector labeled by cache
// instance, operation, and event kind. Keys are deliberately not a label;
// their cardinality is unbounded.
type PrometheusSink struct {
	events *prometheus.CounterVec
}

// NewPrometheusSink builds the sink and registers its collector with reg.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runtimecache",
		Name:      "events_total",
		Help:      "Cache read outcomes by instance, operation, and kind.",
	}, []string{"cache", "op", "kind"})
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &PrometheusSink{events: events}, nil
}

// Record implements cache.Sink.
func (s *PrometheusSink) Record(ev cache.Event) {
	s.events.WithLabelValues(ev.Cache, normalizeOp(ev.Op), string(ev.Kind)).Inc()
}
