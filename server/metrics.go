package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts requests and answer latency per endpoint. A nil
// *Metrics disables collection, which is how the usage-stats opt-out
// is implemented.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "techie",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "techie",
			Name:      "request_duration_seconds",
			Help:      "Request handling time in seconds, by endpoint.",
			Buckets:   []float64{0.05, 0.25, 1, 5, 15, 30, 60, 120},
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) observe(endpoint, code string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, code).Inc()
	m.Duration.WithLabelValues(endpoint).Observe(seconds)
}
