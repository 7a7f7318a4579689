package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the mixer.
type Metrics struct {
	registry                    *prometheus.Registry
	requestsTotal               prometheus.Counter
	libraryLoadsTotal           prometheus.Counter
	transportCommandsTotal      prometheus.Counter
	thumbnailsResolvedTotal     prometheus.Counter
	illustrationsGeneratedTotal prometheus.Counter
	deckItems                   prometheus.Gauge
	errorsTotal                 prometheus.Counter
}

// New creates and registers Prometheus metrics for the mixer.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vjdeck_requests_total",
		Help: "Total number of HTTP requests received",
	})
	libraryLoadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vjdeck_library_loads_total",
		Help: "Total number of media library loads",
	})
	transportCommandsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vjdeck_transport_commands_total",
		Help: "Total number of global transport commands issued",
	})
	thumbnailsResolvedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vjdeck_thumbnails_resolved_total",
		Help: "Total number of thumbnails served from the fallback chain",
	})
	illustrationsGeneratedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vjdeck_illustrations_generated_total",
		Help: "Total number of illustration provider calls (cache misses)",
	})
	deckItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vjdeck_deck_items",
		Help: "Number of items currently on the deck",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vjdeck_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		libraryLoadsTotal,
		transportCommandsTotal,
		thumbnailsResolvedTotal,
		illustrationsGeneratedTotal,
		deckItems,
		errorsTotal,
	)

	return &Metrics{
		registry:                    registry,
		requestsTotal:               requestsTotal,
		libraryLoadsTotal:           libraryLoadsTotal,
		transportCommandsTotal:      transportCommandsTotal,
		thumbnailsResolvedTotal:     thumbnailsResolvedTotal,
		illustrationsGeneratedTotal: illustrationsGeneratedTotal,
		deckItems:                   deckItems,
		errorsTotal:                 errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncLibraryLoads increments the library load counter.
func (m *Metrics) IncLibraryLoads() {
	m.libraryLoadsTotal.Inc()
}

// IncTransportCommands increments the transport command counter.
func (m *Metrics) IncTransportCommands() {
	m.transportCommandsTotal.Inc()
}

// IncThumbnailsResolved increments the resolved thumbnail counter.
func (m *Metrics) IncThumbnailsResolved() {
	m.thumbnailsResolvedTotal.Inc()
}

// IncIllustrationsGenerated increments the illustration generation counter.
func (m *Metrics) IncIllustrationsGenerated() {
	m.illustrationsGeneratedTotal.Inc()
}

// SetDeckItems sets the deck size gauge.
func (m *Metrics) SetDeckItems(n int) {
	m.deckItems.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. deck size).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
