package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records lookup metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	sourceDuration *prometheus.HistogramVec
	sourceTotal    *prometheus.CounterVec
	analysesTotal  *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		sourceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "domain_lookup_source_duration_seconds",
				Help:    "Duration of a single source lookup in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),

		sourceTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_lookup_source_total",
				Help: "Source lookups by outcome",
			},
			[]string{"source", "outcome"},
		),

		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_lookup_analyses_total",
				Help: "Domain analyses by result",
			},
			[]string{"result"},
		),

		cacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domain_lookup_cache_total",
				Help: "Report cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (c *Collector) RecordSource(source, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.sourceDuration.WithLabelValues(source).Observe(duration.Seconds())
	c.sourceTotal.WithLabelValues(source, outcome).Inc()
}

func (c *Collector) RecordAnalysis(result string) {
	if c == nil {
		return
	}
	c.analysesTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordCache(result string) {
	if c == nil {
		return
	}
	c.cacheTotal.WithLabelValues(result).Inc()
}
