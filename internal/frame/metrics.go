package frame

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	resolutions *prometheus.CounterVec
	duration    prometheus.Histogram
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coinframe",
			Name:      "resolutions_total",
			Help:      "Symbol resolutions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coinframe",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving a symbol end to end.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if err := registerer.Register(m.resolutions); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metrics) observe(outcome string, elapsed time.Duration) {
	m.resolutions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
