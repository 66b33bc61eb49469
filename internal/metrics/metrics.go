package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRenderError = "render_error"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Lookups        *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	Labels         *prometheus.CounterVec
	RendersActive  prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riostats_lookups_total",
				Help: "Character lookups by outcome",
			},
			[]string{"outcome"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riostats_render_duration_seconds",
				Help:    "Time spent rendering a profile page",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"renderer"},
		),
		Labels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riostats_labels_total",
				Help: "Label resolutions by key and source (strategy, default or derived)",
			},
			[]string{"key", "source"},
		),
		RendersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "riostats_renders_in_flight",
				Help: "Renders currently holding a concurrency slot",
			},
		),
	}
}

// ObserveRender records one render's duration.
func (m *Metrics) ObserveRender(renderer string, d time.Duration) {
	m.RenderDuration.WithLabelValues(renderer).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
