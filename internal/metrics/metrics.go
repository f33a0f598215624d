// Package metrics exposes Prometheus counters for the grid service.
//
// Every Metrics owns its registry so tests can build as many as they like.
// All recording methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "techbeat"

// Load results.
const (
	ResultReady  = "ready"
	ResultFailed = "failed"
)

// Metrics holds the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	viewsOpened  prometheus.Counter
	viewsEvicted prometheus.Counter
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	exports      prometheus.Counter
	exportedRows prometheus.Counter
	formSubmits  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		viewsOpened: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_views_opened_total",
			Help:      "Total number of grid views opened",
		}),
		viewsEvicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_views_evicted_total",
			Help:      "Total number of idle grid views evicted",
		}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_loads_total",
			Help:      "Total number of grid loads by result",
		}, []string{"result"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grid_load_duration_seconds",
			Help:      "Grid load latency",
			Buckets:   prometheus.DefBuckets,
		}),
		exports: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_exports_total",
			Help:      "Total number of CSV exports",
		}),
		exportedRows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_exported_rows_total",
			Help:      "Total number of rows written to CSV exports",
		}),
		formSubmits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Total number of form submissions by form and result",
		}, []string{"form", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GaugeFunc registers a gauge sampled from fn at scrape time.
func (m *Metrics) GaugeFunc(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn)
}

// ViewOpened counts a newly opened grid view.
func (m *Metrics) ViewOpened() {
	if m == nil {
		return
	}
	m.viewsOpened.Inc()
}

// ViewsEvicted counts n views dropped by the idle sweep. Zero is ignored.
func (m *Metrics) ViewsEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.viewsEvicted.Add(float64(n))
}

// LoadFinished records one resolved load.
func (m *Metrics) LoadFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultReady
	if err != nil {
		result = ResultFailed
	}
	m.loads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(d.Seconds())
}

// Exported counts one CSV export of rows rows.
func (m *Metrics) Exported(rows int) {
	if m == nil {
		return
	}
	m.exports.Inc()
	m.exportedRows.Add(float64(rows))
}

// FormSubmitted counts one submission of the named form, labelled by
// whether it passed validation.
func (m *Metrics) FormSubmitted(form string, valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.formSubmits.WithLabelValues(form, result).Inc()
}
