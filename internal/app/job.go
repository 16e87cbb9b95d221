// Package app wires the loader, the query runner and the report sinks into
// the table reset, load and query phases of one job run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
	"github.com/couchcryptid/weather-bigtable-etl/internal/observability"
	"github.com/couchcryptid/weather-bigtable-etl/internal/pipeline"
	"github.com/couchcryptid/weather-bigtable-etl/internal/query"
)

// Store is the table the job loads and queries.
type Store interface {
	pipeline.BatchWriter
	query.Reader
	DeleteTable(ctx context.Context) error
	EnsureTable(ctx context.Context) (bool, error)
}

// ReportPublisher delivers a finished report to an external sink.
type ReportPublisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// Options configures a Job. Publisher and Closers are optional.
type Options struct {
	Store              Store
	Source             pipeline.Source
	Publisher          ReportPublisher
	Stations           []domain.Station
	BatchMutationLimit int
	// Out receives the console report; nil discards it.
	Out     io.Writer
	Closers []io.Closer
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Job runs the reset, load and query phases against one table.
type Job struct {
	runID     string
	store     Store
	loader    *pipeline.Loader
	runner    *query.Runner
	publisher ReportPublisher
	stations  []domain.Station
	out       io.Writer
	closers   []io.Closer
	logger    *slog.Logger
	metrics   *observability.Metrics
	retry     retryPolicy

	ready atomic.Bool

	mu   sync.Mutex
	last *domain.Report
}

// New creates a Job with a fresh run id.
func New(opts Options) *Job {
	runID := uuid.NewString()
	logger := opts.Logger.With("run_id", runID)
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	return &Job{
		runID:     runID,
		store:     opts.Store,
		loader:    pipeline.NewLoader(opts.Source, opts.Store, logger, opts.Metrics, opts.BatchMutationLimit),
		runner:    query.NewRunner(opts.Store, logger, opts.Metrics),
		publisher: opts.Publisher,
		stations:  opts.Stations,
		out:       out,
		closers:   opts.Closers,
		logger:    logger,
		metrics:   opts.Metrics,
		retry:     defaultRetryPolicy,
	}
}

// RunID identifies this job run in logs and reports.
func (j *Job) RunID() string { return j.runID }

// CheckReadiness returns nil once the load phase has finished or was skipped.
func (j *Job) CheckReadiness(_ context.Context) error {
	if !j.ready.Load() {
		return errors.New("data load has not finished")
	}
	return nil
}

// LastReport returns the most recent report produced by Query.
func (j *Job) LastReport() (domain.Report, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.last == nil {
		return domain.Report{}, false
	}
	return *j.last, true
}

// Drop deletes the table. A missing table is logged and skipped.
func (j *Job) Drop(ctx context.Context) error {
	j.logger.Info("deleting table")
	err := j.store.DeleteTable(ctx)
	switch {
	case errors.Is(err, domain.ErrTableNotFound):
		j.logger.Warn("table does not exist, skipping deletion", "error", err)
		j.metrics.TableOperations.WithLabelValues("delete", "skipped").Inc()
		return nil
	case err != nil:
		j.metrics.TableOperations.WithLabelValues("delete", "error").Inc()
		return err
	}
	j.metrics.TableOperations.WithLabelValues("delete", "success").Inc()
	return nil
}

// Reset drops the table and creates it again empty.
func (j *Job) Reset(ctx context.Context) error {
	if err := j.retry.do(ctx, j.logger, "delete table", func() error { return j.Drop(ctx) }); err != nil {
		return err
	}

	j.logger.Info("creating table")
	var created bool
	err := j.retry.do(ctx, j.logger, "create table", func() error {
		var err error
		created, err = j.store.EnsureTable(ctx)
		return err
	})
	if err != nil {
		j.metrics.TableOperations.WithLabelValues("create", "error").Inc()
		return err
	}
	if created {
		j.metrics.TableOperations.WithLabelValues("create", "success").Inc()
	} else {
		j.metrics.TableOperations.WithLabelValues("create", "skipped").Inc()
	}
	return nil
}

// Load writes every station file into the table and marks the job ready.
func (j *Job) Load(ctx context.Context) (pipeline.Stats, error) {
	stats, err := j.loader.Load(ctx, j.stations)
	if err != nil {
		return stats, err
	}
	j.ready.Store(true)
	return stats, nil
}

// SkipLoad marks the job ready without loading, for query-only runs.
func (j *Job) SkipLoad() {
	j.ready.Store(true)
}

// Query runs the fixed reports, prints them and publishes them when a
// publisher is configured.
func (j *Job) Query(ctx context.Context) (domain.Report, error) {
	report, err := j.runner.Run(ctx, j.runID)
	if err != nil {
		return report, err
	}

	j.mu.Lock()
	j.last = &report
	j.mu.Unlock()

	if err := query.WriteReport(j.out, report); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}

	if j.publisher != nil {
		if err := j.publisher.Publish(ctx, report); err != nil {
			return report, err
		}
		j.metrics.ReportsPublished.Inc()
	}
	return report, nil
}

// Run performs reset, load and query in sequence.
func (j *Job) Run(ctx context.Context) (domain.Report, error) {
	j.logger.Info("job started", "stations", len(j.stations))
	j.metrics.JobRunning.Set(1)
	defer j.metrics.JobRunning.Set(0)

	if err := j.Reset(ctx); err != nil {
		return domain.Report{}, err
	}
	if _, err := j.Load(ctx); err != nil {
		return domain.Report{}, err
	}
	report, err := j.Query(ctx)
	if err != nil {
		return report, err
	}

	j.logger.Info("job finished")
	return report, nil
}

// Execute runs phase with the job-running gauge raised, so load-only and
// query-only invocations report it the same way a full Run does.
func (j *Job) Execute(ctx context.Context, phase func(context.Context, *Job) error) error {
	j.metrics.JobRunning.Set(1)
	defer j.metrics.JobRunning.Set(0)
	return phase(ctx, j)
}

// Close releases every resource handed to the job.
func (j *Job) Close() error {
	j.logger.Info("closing clients")
	var result *multierror.Error
	for _, c := range j.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
