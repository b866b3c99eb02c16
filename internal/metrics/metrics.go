package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recordsParsed tracks batch lines by kind and outcome (valid, unparseable).
	recordsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_records_parsed_total",
		Help: "Total number of batch lines parsed by kind and result",
	}, []string{"kind", "result"})

	// categoriesReconciled tracks category outcomes.
	categoriesReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_categories_reconciled_total",
		Help: "Total number of category records reconciled by result",
	}, []string{"result"}) // result: created, updated, failed, skipped

	// productsReconciled tracks product outcomes.
	productsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_products_reconciled_total",
		Help: "Total number of product records reconciled by result",
	}, []string{"result"}) // result: merged, inserted, dropped, skipped

	// mergeCacheLookups tracks merge cache hits and misses.
	mergeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_merge_cache_lookups_total",
		Help: "Total number of merge cache lookups by result",
	}, []string{"result"})

	// documentSaves tracks category document writes.
	documentSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_document_saves_total",
		Help: "Total number of category document saves by result",
	}, []string{"result"})

	// passDuration tracks the wall time of ingestion passes.
	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_pass_duration_seconds",
		Help:    "Time taken by an ingestion pass by status",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"status"})

	// passInProgress is 1 while a pass is running.
	passInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_pass_in_progress",
		Help: "Whether an ingestion pass is currently running",
	})

	// archiveFailures tracks batch files that could not be archived.
	archiveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_archive_failures_total",
		Help: "Total number of batch files that failed to archive",
	})
)

// Recorder provides methods to record catalog metrics.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordParse records the outcome of parsing one batch file.
func (m *Recorder) RecordParse(kind string, valid, unparseable int) {
	recordsParsed.WithLabelValues(kind, "valid").Add(float64(valid))
	recordsParsed.WithLabelValues(kind, "unparseable").Add(float64(unparseable))
}

// RecordCategory records one category outcome.
func (m *Recorder) RecordCategory(result string) {
	categoriesReconciled.WithLabelValues(result).Inc()
}

// RecordProduct records one product outcome.
func (m *Recorder) RecordProduct(result string) {
	productsReconciled.WithLabelValues(result).Inc()
}

// RecordCacheLookup records a merge cache hit or miss.
func (m *Recorder) RecordCacheLookup(hit bool) {
	if hit {
		mergeCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	mergeCacheLookups.WithLabelValues("miss").Inc()
}

// RecordSave records a document save.
func (m *Recorder) RecordSave(err error) {
	if err != nil {
		documentSaves.WithLabelValues("error").Inc()
		return
	}
	documentSaves.WithLabelValues("ok").Inc()
}

// RecordPass records a finished pass.
func (m *Recorder) RecordPass(status string, duration time.Duration) {
	passDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// SetPassInProgress flips the in-progress gauge.
func (m *Recorder) SetPassInProgress(running bool) {
	if running {
		passInProgress.Set(1)
		return
	}
	passInProgress.Set(0)
}

// RecordArchiveFailure records a batch file that could not be archived.
func (m *Recorder) RecordArchiveFailure() {
	archiveFailures.Inc()
}
