package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
	"github.com/couchcryptid/weather-bigtable-etl/internal/observability"
)

// Source opens station CSV files by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// BatchWriter applies a group of row mutations to the store in one request.
type BatchWriter interface {
	ApplyBatch(ctx context.Context, rows []domain.RowMutation) error
}

// maxLineBytes bounds a single CSV line.
const maxLineBytes = 1 << 20

// Skip reasons reported in metrics and stats.
const (
	reasonMalformed     = "malformed"
	reasonDuplicateHour = "duplicate_hour"
)

// StationStats summarizes the load of one station file.
type StationStats struct {
	StationID     string
	File          string
	Rows          int
	Mutations     int
	Malformed     int
	DuplicateHour int
}

// Stats summarizes a complete load.
type Stats struct {
	Stations  []StationStats
	Rows      int
	Mutations int
	Batches   int
}

// Loader reads station CSV files and writes one row per distinct hour,
// flushing whenever the pending batch reaches the mutation limit.
type Loader struct {
	source        Source
	writer        BatchWriter
	logger        *slog.Logger
	metrics       *observability.Metrics
	mutationLimit int
}

// NewLoader creates a Loader. mutationLimit is the number of pending cell
// mutations that triggers a flush.
func NewLoader(source Source, writer BatchWriter, logger *slog.Logger, metrics *observability.Metrics, mutationLimit int) *Loader {
	return &Loader{
		source:        source,
		writer:        writer,
		logger:        logger,
		metrics:       metrics,
		mutationLimit: mutationLimit,
	}
}

// Load reads every station file in order. Any open, read, or write error
// aborts the load.
func (l *Loader) Load(ctx context.Context, stations []domain.Station) (Stats, error) {
	var stats Stats
	b := &batch{limit: l.mutationLimit}

	for _, st := range stations {
		l.logger.Info("loading station data", "station", st.ID, "file", st.File)

		ss, err := l.loadStation(ctx, st, b, &stats)
		if err != nil {
			return stats, err
		}
		if err := l.flush(ctx, b, &stats, "end of file"); err != nil {
			return stats, fmt.Errorf("load %s: %w", st.ID, err)
		}

		stats.Stations = append(stats.Stations, ss)
		stats.Rows += ss.Rows
		l.logger.Info("station loaded",
			"station", st.ID,
			"rows", ss.Rows,
			"malformed", ss.Malformed,
			"duplicate_hour", ss.DuplicateHour,
		)
	}

	l.logger.Info("data loaded", "rows", stats.Rows, "mutations", stats.Mutations, "batches", stats.Batches)
	return stats, nil
}

func (l *Loader) loadStation(ctx context.Context, st domain.Station, b *batch, stats *Stats) (StationStats, error) {
	ss := StationStats{StationID: st.ID, File: st.File}

	rc, err := l.source.Open(ctx, st.File)
	if err != nil {
		return ss, fmt.Errorf("load %s: open data file %s: %w", st.ID, st.File, err)
	}
	defer rc.Close() //nolint:errcheck // read-only

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	hours := domain.NewHourTracker()
	header := true

	for sc.Scan() {
		if header {
			header = false
			continue
		}

		reading, err := domain.ParseReading(st.ID, domain.SplitLine(sc.Text()))
		if err != nil {
			ss.Malformed++
			l.metrics.RowsSkipped.WithLabelValues(st.ID, reasonMalformed).Inc()
			continue
		}
		if !hours.First(reading.Hour) {
			ss.DuplicateHour++
			l.metrics.RowsSkipped.WithLabelValues(st.ID, reasonDuplicateHour).Inc()
			continue
		}

		m := reading.Mutation()
		b.add(m)
		ss.Rows++
		ss.Mutations += m.MutationCount()
		l.metrics.RowsWritten.WithLabelValues(st.ID).Inc()

		if b.full() {
			if err := l.flush(ctx, b, stats, "limit reached"); err != nil {
				return ss, fmt.Errorf("load %s: %w", st.ID, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return ss, fmt.Errorf("load %s: read data file %s: %w", st.ID, st.File, err)
	}

	return ss, nil
}

// flush sends the pending batch, if any, and resets it.
func (l *Loader) flush(ctx context.Context, b *batch, stats *Stats, why string) error {
	if b.empty() {
		return nil
	}

	l.logger.Info("sending batch", "mutations", b.mutations, "rows", len(b.rows), "trigger", why)
	start := time.Now()

	if err := l.writer.ApplyBatch(ctx, b.rows); err != nil {
		return fmt.Errorf("apply batch of %d mutations: %w", b.mutations, err)
	}

	l.metrics.BatchFlushDuration.Observe(time.Since(start).Seconds())
	l.metrics.BatchMutations.Observe(float64(b.mutations))
	l.metrics.MutationsSent.Add(float64(b.mutations))
	l.metrics.BatchesFlushed.Inc()

	stats.Mutations += b.mutations
	stats.Batches++
	b.reset()
	return nil
}
