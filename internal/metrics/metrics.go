package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nea"

// Collector provides application metrics collection
type Collector struct {
	// Fetch Metrics
	FetchRequestsTotal *prometheus.CounterVec
	FallbacksTotal     *prometheus.CounterVec

	// Refresh Metrics
	RefreshDuration    *prometheus.HistogramVec
	RefreshErrorsTotal *prometheus.CounterVec
	LastSuccess        *prometheus.GaugeVec
}

// NewCollector creates a collector registered on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_requests_total",
				Help:      "Total number of upstream requests by metric, source and HTTP status",
			},
			[]string{"metric", "source", "status"},
		),

		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Number of times the primary response was too short and the secondary source was used",
			},
			[]string{"metric"},
		),

		RefreshDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "refresh_duration_seconds",
				Help:      "Duration of a full refresh cycle in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"metric"},
		),

		RefreshErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_errors_total",
				Help:      "Total number of failed refresh cycles by metric",
			},
			[]string{"metric"},
		),

		LastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful refresh by metric",
			},
			[]string{"metric"},
		),
	}
}

// RecordFetch counts one upstream request.
func (c *Collector) RecordFetch(metric, source, status string) {
	if c == nil {
		return
	}
	c.FetchRequestsTotal.WithLabelValues(metric, source, status).Inc()
}

// RecordFallback counts one switch to the secondary source.
func (c *Collector) RecordFallback(metric string) {
	if c == nil {
		return
	}
	c.FallbacksTotal.WithLabelValues(metric).Inc()
}

// RecordRefresh records the outcome of a refresh cycle.
func (c *Collector) RecordRefresh(metric string, seconds float64, unixNow float64, err error) {
	if c == nil {
		return
	}
	c.RefreshDuration.WithLabelValues(metric).Observe(seconds)
	if err != nil {
		c.RefreshErrorsTotal.WithLabelValues(metric).Inc()
		return
	}
	c.LastSuccess.WithLabelValues(metric).Set(unixNow)
}
