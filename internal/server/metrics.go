package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/stateview/internal/profilecard"
	"github.com/go-drift/stateview/internal/randomuser"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	stateWrites   *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetchErrors   prometheus.Counter
}

// NewMetrics registers the stateview collectors plus the Go runtime
// collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stateWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stateview",
			Name:      "state_writes_total",
			Help:      "Settled card state writes, by state.",
		}, []string{"state"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stateview",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream profile fetches.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stateview",
			Name:      "fetch_errors_total",
			Help:      "Upstream profile fetches that failed.",
		}),
	}
	m.registry.MustRegister(
		m.stateWrites,
		m.fetchDuration,
		m.fetchErrors,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveState counts one settled state write.
func (m *Metrics) ObserveState(s profilecard.ViewState) {
	m.stateWrites.WithLabelValues(profilecard.Name(s)).Inc()
}

// Instrument wraps f so every fetch is timed and failures are counted.
func (m *Metrics) Instrument(f profilecard.Fetcher) profilecard.Fetcher {
	return &instrumentedFetcher{next: f, metrics: m}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type instrumentedFetcher struct {
	next    profilecard.Fetcher
	metrics *Metrics
}

func (f *instrumentedFetcher) Fetch(ctx context.Context, gender randomuser.Gender) ([]byte, error) {
	start := time.Now()
	payload, err := f.next.Fetch(ctx, gender)
	f.metrics.fetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		f.metrics.fetchErrors.Inc()
	}
	return payload, err
}
