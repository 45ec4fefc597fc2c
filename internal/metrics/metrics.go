// Package metrics exposes Prometheus counters for the quote pipeline.
package metrics

import (
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chartfeed/internal/quote"
)

// Metrics holds every collector the services report.
type Metrics struct {
	QuotesTotal     *prometheus.CounterVec   // labels: converter
	OutcomesTotal   *prometheus.CounterVec   // labels: converter, status
	NaNCloses       *prometheus.CounterVec   // labels: converter
	FeedCallDur     *prometheus.HistogramVec // labels: op, result
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg gets a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartfeed_quotes_total",
			Help: "Canonical quotes produced, by converter",
		}, []string{"converter"}),
		OutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartfeed_conversions_total",
			Help: "Converter calls, by converter and outcome status",
		}, []string{"converter", "status"}),
		NaNCloses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartfeed_nan_closes_total",
			Help: "Quotes whose close did not parse to a number",
		}, []string{"converter"}),
		FeedCallDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chartfeed_feed_call_duration_seconds",
			Help:    "Upstream feed call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "result"}),
		PublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartfeed_published_quotes_total",
			Help: "Live quotes published to subscribers",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartfeed_publish_failures_total",
			Help: "Live quotes that failed to publish",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.QuotesTotal,
		m.OutcomesTotal,
		m.NaNCloses,
		m.FeedCallDur,
		m.PublishedTotal,
		m.PublishFailures,
	)
	return m
}

// ObserveQuotes counts one converter call with the given status and the quotes
// it produced.
func (m *Metrics) ObserveQuotes(converter, status string, quotes []quote.Quote) {
	m.OutcomesTotal.WithLabelValues(converter, status).Inc()
	if len(quotes) == 0 {
		return
	}
	m.QuotesTotal.WithLabelValues(converter).Add(float64(len(quotes)))
	var nan int
	for _, q := range quotes {
		if math.IsNaN(q.Close) {
			nan++
		}
	}
	if nan > 0 {
		m.NaNCloses.WithLabelValues(converter).Add(float64(nan))
	}
}

// ObserveFeedCall records the latency of one upstream call started at start.
func (m *Metrics) ObserveFeedCall(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.FeedCallDur.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
