// Package observability holds the Prometheus instrumentation for the
// dashboard service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tlaw6500/cropsif/internal/sif"
)

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	RasterLoads  *prometheus.CounterVec // labels: outcome={loaded,absent,error}
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	HTTPRequestDuration *prometheus.HistogramVec // labels: route
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RasterLoads,
		m.CacheLookups,
		m.HTTPRequestDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RasterLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropsif",
			Name:      "raster_loads_total",
			Help:      "Raster archive reads by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropsif",
			Name:      "grid_cache_lookups_total",
			Help:      "Grid cache lookups by result.",
		}, []string{"result"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cropsif",
			Name:      "http_request_duration_seconds",
			Help:      "Dashboard request duration by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
	}
}

// instrumentedLoader counts load outcomes on its way through to the next
// loader in the chain.
type instrumentedLoader struct {
	next    sif.GridLoader
	metrics *Metrics
}

// InstrumentLoader wraps a grid loader so every load increments the raster
// load counter with its outcome.
func InstrumentLoader(next sif.GridLoader, metrics *Metrics) sif.GridLoader {
	return &instrumentedLoader{next: next, metrics: metrics}
}

func (l *instrumentedLoader) Load(year, doy int) (*sif.Grid, bool, error) {
	grid, found, err := l.next.Load(year, doy)
	switch {
	case err != nil:
		l.metrics.RasterLoads.WithLabelValues("error").Inc()
	case !found:
		l.metrics.RasterLoads.WithLabelValues("absent").Inc()
	default:
		l.metrics.RasterLoads.WithLabelValues("loaded").Inc()
	}
	return grid, found, err
}
