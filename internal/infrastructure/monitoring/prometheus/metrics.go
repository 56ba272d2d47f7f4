// Package prometheus defines the ingestion pipeline's metric surface.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default buckets.  Extraction of a weekly archive entry runs from well under
// a second for APS files to minutes for the largest current-dialect files.
var (
	DefaultExtractionDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300}
	DefaultFetchDurationBuckets      = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}
)

// Metrics holds every pipeline metric.  One instance is shared by the sync
// scheduler, the workers, and the HTTP layer.
type Metrics struct {
	RecordsExtracted  *prometheus.CounterVec
	RecordsDiscarded  *prometheus.CounterVec
	ExtractionSeconds *prometheus.HistogramVec

	ArchivesProcessed *prometheus.CounterVec
	ArchiveEntries    *prometheus.CounterVec
	FetchSeconds      *prometheus.HistogramVec

	TasksPublished prometheus.Counter
	TasksParkedDLQ prometheus.Counter

	LedgerSkips prometheus.Counter
}

// NewMetrics registers the full metric set against reg and returns it.
// Passing prometheus.DefaultRegisterer wires the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grantfeed_records_extracted_total",
			Help: "Normalized records emitted, by source dialect.",
		}, []string{"dialect"}),
		RecordsDiscarded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grantfeed_records_discarded_total",
			Help: "Record sections discarded as all-absent, by source dialect.",
		}, []string{"dialect"}),
		ExtractionSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grantfeed_extraction_duration_seconds",
			Help:    "Wall time to extract one archive entry.",
			Buckets: DefaultExtractionDurationBuckets,
		}, []string{"dialect"}),

		ArchivesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grantfeed_archives_processed_total",
			Help: "Archives that finished processing, by outcome.",
		}, []string{"status"}),
		ArchiveEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grantfeed_archive_entries_total",
			Help: "Archive entries seen, by source dialect.",
		}, []string{"dialect"}),
		FetchSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grantfeed_archive_fetch_duration_seconds",
			Help:    "Wall time to download one archive.",
			Buckets: DefaultFetchDurationBuckets,
		}, []string{"year"}),

		TasksPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "grantfeed_tasks_published_total",
			Help: "Archive tasks published to the work topic.",
		}),
		TasksParkedDLQ: factory.NewCounter(prometheus.CounterOpts{
			Name: "grantfeed_tasks_dlq_total",
			Help: "Archive tasks parked on the dead-letter topic.",
		}),

		LedgerSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "grantfeed_ledger_skips_total",
			Help: "Archives skipped because the ledger already has them.",
		}),
	}
}

// ObserveExtraction records one finished extraction pass.
func (m *Metrics) ObserveExtraction(dialect string, emitted, discarded int, elapsed time.Duration) {
	m.RecordsExtracted.WithLabelValues(dialect).Add(float64(emitted))
	m.RecordsDiscarded.WithLabelValues(dialect).Add(float64(discarded))
	m.ExtractionSeconds.WithLabelValues(dialect).Observe(elapsed.Seconds())
	m.ArchiveEntries.WithLabelValues(dialect).Inc()
}

// Archive outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)
