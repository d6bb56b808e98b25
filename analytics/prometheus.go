package analytics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusTracker exports events as counters and resolution latency as
// a histogram.
type PrometheusTracker struct {
	events      *prometheus.CounterVec
	resolutions *prometheus.HistogramVec
}

// NewPrometheusTracker registers its collectors on reg. A nil reg uses the
// default registerer.
func NewPrometheusTracker(reg prometheus.Registerer) (*PrometheusTracker, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libscan",
			Name:      "events_total",
			Help:      "Analytics events emitted by the resolver",
		},
		[]string{"event", "partner", "coin"},
	)

	resolutions := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "libscan",
			Name:      "resolution_seconds",
			Help:      "Time spent resolving scanned data",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	for _, c := range []prometheus.Collector{events, resolutions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &PrometheusTracker{events: events, resolutions: resolutions}, nil
}

// Track increments the counter for event.
func (p *PrometheusTracker) Track(event string, props map[string]string) {
	p.events.With(prometheus.Labels{
		"event":   event,
		"partner": props["exchange"],
		"coin":    props["coin"],
	}).Inc()
}

// ObserveResolution records how long a resolution of kind took.
func (p *PrometheusTracker) ObserveResolution(kind string, d time.Duration) {
	p.resolutions.With(prometheus.Labels{"kind": kind}).Observe(d.Seconds())
}

var _ Tracker = (*PrometheusTracker)(nil)
