package tenant

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records gateway fetches made by tenant stores. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the tenant metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stokwise_tenant_fetch_total",
				Help: "Total number of tenant context fetches",
			},
			[]string{"op", "result"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stokwise_tenant_fetch_duration_seconds",
				Help:    "Duration of tenant context fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.fetchTotal, m.fetchDuration)
	}
	return m
}

func (m *Metrics) observe(op, result string, start time.Time) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(op, result).Inc()
	m.fetchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
