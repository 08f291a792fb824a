package bom

import (
	"time"

	"github.com/WessleyAI/installbom/pkg/metrics"
)

// Metric names.
const (
	MetricSummaries        = "installbom_summaries_total"
	MetricSummaryDuration  = "installbom_summary_duration_seconds"
	MetricCatalogReloads   = "installbom_catalog_reloads_total"
	MetricMigratedDocument = "installbom_migrated_documents_total"
	MetricInFlight         = "installbom_summaries_in_flight"
)

// Metrics records service activity in a metrics registry.
type Metrics struct {
	reg      *metrics.Registry
	duration *metrics.Histogram
	inFlight *metrics.Gauge
}

// NewMetrics registers the service metrics on reg. A nil reg gets a
// private registry.
func NewMetrics(reg *metrics.Registry) *Metrics {
	if reg == nil {
		reg = metrics.New()
	}
	return &Metrics{
		reg:      reg,
		duration: reg.Histogram(MetricSummaryDuration, "Summarization latency", nil),
		inFlight: reg.Gauge(MetricInFlight, "Summaries currently running"),
	}
}

func (m *Metrics) begin() { m.inFlight.Inc() }

func (m *Metrics) summary(result string, start time.Time) {
	m.inFlight.Dec()
	m.reg.Counter(metrics.WithLabels(MetricSummaries, "result", result), "Summaries produced by result").Inc()
	m.duration.Since(start)
}

func (m *Metrics) migrated(result string) {
	m.reg.Counter(metrics.WithLabels(MetricMigratedDocument, "result", result), "Documents processed by migration").Inc()
}

// CatalogReload is a catalog.CacheOpts.OnReload hook.
func (m *Metrics) CatalogReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reg.Counter(metrics.WithLabels(MetricCatalogReloads, "result", result), "Catalog reload attempts").Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *metrics.Registry { return m.reg }
