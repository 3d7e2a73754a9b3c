package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the control panel.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	streamsAdded      prometheus.Counter
	streamsEdited     prometheus.Counter
	streamsDeleted    prometheus.Counter
	playlistWrites    *prometheus.CounterVec
	cleanupFailures   *prometheus.CounterVec
	configuredStreams prometheus.Gauge
}

// New creates and registers Prometheus metrics for the panel.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	streamsAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_streams_added_total",
		Help: "Total number of stream definitions added",
	})
	streamsEdited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_streams_edited_total",
		Help: "Total number of stream definitions edited",
	})
	streamsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "panel_streams_deleted_total",
		Help: "Total number of stream definitions deleted",
	})
	playlistWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_playlist_writes_total",
		Help: "Master playlist regenerations by result",
	}, []string{"result"})
	cleanupFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_cleanup_failures_total",
		Help: "Best-effort cleanup steps that failed during delete, by step",
	}, []string{"step"})
	configuredStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "panel_configured_streams",
		Help: "Number of stream definitions in the configuration document",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		streamsAdded,
		streamsEdited,
		streamsDeleted,
		playlistWrites,
		cleanupFailures,
		configuredStreams,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		streamsAdded:      streamsAdded,
		streamsEdited:     streamsEdited,
		streamsDeleted:    streamsDeleted,
		playlistWrites:    playlistWrites,
		cleanupFailures:   cleanupFailures,
		configuredStreams: configuredStreams,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncStreamsAdded increments the added streams counter.
func (m *Metrics) IncStreamsAdded() {
	m.streamsAdded.Inc()
}

// IncStreamsEdited increments the edited streams counter.
func (m *Metrics) IncStreamsEdited() {
	m.streamsEdited.Inc()
}

// IncStreamsDeleted increments the deleted streams counter.
func (m *Metrics) IncStreamsDeleted() {
	m.streamsDeleted.Inc()
}

// ObservePlaylistWrite counts a playlist regeneration as "ok" or "error".
func (m *Metrics) ObservePlaylistWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.playlistWrites.WithLabelValues(result).Inc()
}

// IncCleanupFailure counts a failed cleanup step ("reaper", "logo", "output_dir").
func (m *Metrics) IncCleanupFailure(step string) {
	m.cleanupFailures.WithLabelValues(step).Inc()
}

// SetConfiguredStreams sets the configured streams gauge.
func (m *Metrics) SetConfiguredStreams(n int) {
	m.configuredStreams.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
