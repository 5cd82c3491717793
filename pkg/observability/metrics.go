// Package observability holds the Prometheus metrics of a conversion run.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bearings"

// Metrics holds the counters and gauges for one run, registered on a private
// registry so they can be exported to a node_exporter textfile.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsRead    prometheus.Counter
	LegsBuilt      prometheus.Counter
	ParseErrors    prometheus.Counter
	LegLength      prometheus.Histogram
	TraverseLength prometheus.Gauge
	RunDuration    prometheus.Gauge
}

// NewMetrics creates the metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Survey records read from the input table.",
		}),
		LegsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legs_built_total",
			Help:      "Traverse legs resolved to a destination point.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Bearings that could not be parsed.",
		}),
		LegLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leg_length_feet",
			Help:      "Length of each resolved leg in feet.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
		}),
		TraverseLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "traverse_length_meters",
			Help:      "Geodesic length of the last traverse built.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
	}

	m.Registry.MustRegister(
		m.RecordsRead,
		m.LegsBuilt,
		m.ParseErrors,
		m.LegLength,
		m.TraverseLength,
		m.RunDuration,
	)
	return m
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
