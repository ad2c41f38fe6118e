package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of swiftcodes_operations_total.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics provides observability for ingestion passes and catalogue operations.
type Metrics struct {
	IngestedRecords   prometheus.Counter
	SkippedRecords    prometheus.Counter
	IngestionDuration prometheus.Histogram
	Operations        *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "swiftcodes_ingested_records_total",
			Help: "Total number of records persisted by ingestion passes",
		}),
		SkippedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "swiftcodes_skipped_records_total",
			Help: "Total number of rows skipped by ingestion passes",
		}),
		IngestionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "swiftcodes_ingestion_duration_seconds",
			Help:    "Duration of complete ingestion passes",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swiftcodes_operations_total",
			Help: "Catalogue operations by name and outcome",
		}, []string{"operation", "outcome"}),
	}
}

// ObserveIngestion records the result of one ingestion pass.
// Call with time.Now() at the start of the pass.
func (m *Metrics) ObserveIngestion(processed, skipped int, start time.Time) {
	m.IngestedRecords.Add(float64(processed))
	m.SkippedRecords.Add(float64(skipped))
	m.IngestionDuration.Observe(time.Since(start).Seconds())
}

// IncrementOperation counts one finished operation.
func (m *Metrics) IncrementOperation(operation, outcome string) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
}
