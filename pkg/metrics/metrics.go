// Package metrics records pipeline run metrics and exports them in the
// Prometheus text format for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Pipeline holds the metrics recorded during a single pipeline run
type Pipeline struct {
	registry *prometheus.Registry

	RowsLoaded       *prometheus.CounterVec
	RowsDropped      *prometheus.CounterVec
	CustomersScored  prometheus.Gauge
	SegmentCustomers *prometheus.GaugeVec
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	RunSuccess       prometheus.Gauge
}

// NewPipeline creates a metrics set backed by its own registry so a batch
// run never inherits collectors from other code in the process
func NewPipeline() *Pipeline {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Pipeline{
		registry: registry,
		RowsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_analytics_rows_loaded_total",
				Help: "Total number of rows loaded per source table",
			},
			[]string{"table"},
		),
		RowsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_analytics_rows_dropped_total",
				Help: "Total number of rows dropped for unmatched references",
			},
			[]string{"reason"},
		),
		CustomersScored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_analytics_customers_scored",
				Help: "Number of customers scored in the last run",
			},
		),
		SegmentCustomers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "customer_analytics_segment_customers",
				Help: "Number of customers per segment in the last run",
			},
			[]string{"segment"},
		),
		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_analytics_run_duration_seconds",
				Help: "Duration of the last pipeline run in seconds",
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_analytics_last_run_timestamp_seconds",
				Help: "Unix timestamp of the last pipeline run",
			},
		),
		RunSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_analytics_run_success",
				Help: "Whether the last pipeline run succeeded (1) or failed (0)",
			},
		),
	}
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text exposition format. The file is written to a temp file first and
// renamed so the textfile collector never reads a partial scrape.
func (p *Pipeline) WriteTextfile(path string) error {
	families, err := p.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create metrics temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := expfmt.NewEncoder(tmp, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close metrics temp file: %w", err)
	}
	// CreateTemp uses 0600; the collector usually runs as a different user
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish metrics file: %w", err)
	}

	return nil
}
