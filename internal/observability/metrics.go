package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vortex_track"

// Metrics holds the Prometheus counters, histograms, and gauges for track retrieval, serving, and export.
type Metrics struct {
	// NHC retrieval metrics.
	FetchRequests *prometheus.CounterVec   // labels: deck={a,b,f}, outcome={success,error}
	FetchCache    *prometheus.CounterVec   // labels: result={hit,miss,expired}
	FetchDuration *prometheus.HistogramVec // labels: deck
	ResolveCalls  *prometheus.CounterVec   // labels: outcome={success,error,not_found}

	// HTTP track endpoints.
	TrackRequests *prometheus.CounterVec // labels: view={fort22,isotachs,swath,summary}, status

	// Export pipeline metrics.
	TracksExported   prometheus.Counter
	ExportErrors     prometheus.Counter
	MessagesProduced prometheus.Counter
	ExportDuration   prometheus.Histogram
	SinkEnabled      prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchCache,
		m.FetchDuration,
		m.ResolveCalls,
		m.TrackRequests,
		m.TracksExported,
		m.ExportErrors,
		m.MessagesProduced,
		m.ExportDuration,
		m.SinkEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "NHC deck downloads by deck and outcome.",
		}, []string{"deck", "outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_total",
			Help:      "Deck cache lookups by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "NHC deck download and decode duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"deck"}),
		ResolveCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_requests_total",
			Help:      "Storm name lookups by outcome.",
		}, []string{"outcome"}),
		TrackRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_requests_total",
			Help:      "Track HTTP requests by view and status code.",
		}, []string{"view", "status"}),
		TracksExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracks_exported_total",
			Help:      "Tracks serialized and delivered by the export pipeline.",
		}),
		ExportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_errors_total",
			Help:      "Tracks that failed to load, serialize, or deliver.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Duration of a complete export run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SinkEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kafka_sink_enabled",
			Help:      "1 when tracks are also published to Kafka, 0 otherwise.",
		}),
	}
}
