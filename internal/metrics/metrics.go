// Package metrics exposes export statistics in the Prometheus text format,
// for the node_exporter textfile collector or a /metrics endpoint.
package metrics

import (
	"fmt"
	"time"

	"github.com/dyluth/libdoc2tb/pkg/projectdump"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder accumulates the statistics of every export of this process.
type Recorder struct {
	registry   *prometheus.Registry
	elements   *prometheus.CounterVec
	unresolved prometheus.Counter
	exports    *prometheus.CounterVec
	duration   prometheus.Histogram
	lastExport prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libdoc2tb_elements_total",
			Help: "Test elements written to project-dumps, by element type.",
		}, []string{"kind"}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libdoc2tb_unresolved_references_total",
			Help: "Parameter types that resolved to no data type.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libdoc2tb_exports_total",
			Help: "Export runs, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "libdoc2tb_export_duration_seconds",
			Help:    "Wall time of successful export runs.",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		lastExport: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "libdoc2tb_last_export_timestamp_seconds",
			Help: "Unix time of the last successful export.",
		}),
	}

	r.registry.MustRegister(r.elements, r.unresolved, r.exports, r.duration, r.lastExport)
	return r
}

// Registry returns the registry holding the recorder metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one successful export that finished at now.
func (r *Recorder) Observe(report *projectdump.Report, took time.Duration, now time.Time) {
	for _, kind := range []projectdump.Kind{projectdump.KindSubdivision, projectdump.KindDataType, projectdump.KindInteraction} {
		r.elements.WithLabelValues(string(kind)).Add(float64(report.Elements[kind]))
	}
	r.unresolved.Add(float64(len(report.Unresolved)))
	r.exports.WithLabelValues("success").Inc()
	r.duration.Observe(took.Seconds())
	r.lastExport.Set(float64(now.Unix()))
}

// ObserveFailure records one failed export.
func (r *Recorder) ObserveFailure() {
	r.exports.WithLabelValues("failure").Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
