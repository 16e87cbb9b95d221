package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the load and query job.
type Metrics struct {
	RowsWritten     *prometheus.CounterVec // labels: station
	RowsSkipped     *prometheus.CounterVec // labels: station, reason={malformed,duplicate_hour}
	MutationsSent   prometheus.Counter
	BatchesFlushed  prometheus.Counter
	JobRunning      prometheus.Gauge
	TableOperations *prometheus.CounterVec // labels: operation={delete,create}, outcome={success,skipped,error}

	// Batch write metrics.
	BatchMutations     prometheus.Histogram
	BatchFlushDuration prometheus.Histogram

	// Query metrics.
	QueryDuration    *prometheus.HistogramVec // labels: query
	QueryRowsScanned *prometheus.CounterVec   // labels: query

	ReportsPublished prometheus.Counter
}

// NewMetrics creates and registers all job metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsWritten,
		m.RowsSkipped,
		m.MutationsSent,
		m.BatchesFlushed,
		m.JobRunning,
		m.TableOperations,
		m.BatchMutations,
		m.BatchFlushDuration,
		m.QueryDuration,
		m.QueryRowsScanned,
		m.ReportsPublished,
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
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Hourly rows queued for writing, by station.",
		}, []string{"station"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "CSV rows not written, by station and reason.",
		}, []string{"station", "reason"}),
		MutationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_sent_total",
			Help:      "Cell mutations successfully applied to the store.",
		}),
		BatchesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_flushed_total",
			Help:      "Bulk mutation requests sent to the store.",
		}),
		JobRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_running",
			Help:      "1 while the job is active, 0 when finished.",
		}),
		TableOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_operations_total",
			Help:      "Admin table operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BatchMutations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_mutations",
			Help:      "Cell mutations per bulk request.",
			Buckets:   []float64{5, 50, 500, 5000, 25000, 50000, 85000, 100000},
		}),
		BatchFlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_flush_duration_seconds",
			Help:      "Duration of a single bulk mutation request.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of each report query.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"query"}),
		QueryRowsScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_rows_scanned_total",
			Help:      "Rows streamed back from the store, by query.",
		}, []string{"query"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Query reports written to the report topic.",
		}),
	}
}
