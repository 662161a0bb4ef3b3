package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the refresh loop.
type Metrics struct {
	Refreshes        prometheus.Counter
	RefreshErrors    prometheus.Counter
	RefresherRunning prometheus.Gauge

	// Fetch and parse metrics.
	FetchDuration  prometheus.Histogram
	StationsParsed prometheus.Gauge
	ForecastTime   prometheus.Gauge // HHMM of the cached bulletin

	// Publish metrics.
	MessagesPublished *prometheus.CounterVec // labels: sink={kafka,nats}
	PublishErrors     *prometheus.CounterVec // labels: sink={kafka,nats}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshErrors,
		m.RefresherRunning,
		m.FetchDuration,
		m.StationsParsed,
		m.ForecastTime,
		m.MessagesPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "winds_aloft",
			Name:      "refreshes_total",
			Help:      "Total successful forecast refreshes.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "winds_aloft",
			Name:      "refresh_errors_total",
			Help:      "Total failed forecast refreshes.",
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "winds_aloft",
			Name:      "refresher_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "winds_aloft",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of fetching and parsing one bulletin.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		StationsParsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "winds_aloft",
			Name:      "stations_parsed",
			Help:      "Number of stations in the cached forecast.",
		}),
		ForecastTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "winds_aloft",
			Name:      "forecast_time_hhmm",
			Help:      "Issuance time (HHMM, UTC) of the cached forecast.",
		}),
		MessagesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "winds_aloft",
			Name:      "messages_published_total",
			Help:      "Station forecasts published by sink.",
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "winds_aloft",
			Name:      "publish_errors_total",
			Help:      "Failed forecast publishes by sink.",
		}, []string{"sink"}),
	}
}
