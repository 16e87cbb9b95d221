package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
	"github.com/couchcryptid/weather-bigtable-etl/internal/observability"
)

// Fixed report parameters.
var (
	VancouverTemperatureKey = domain.RowKey(domain.StationVancouver, "2022-10-01-10")
	PortlandWindPrefix      = domain.KeyPrefix(domain.StationPortland, "2022-09")
	SeaTacDailyPrefix       = domain.KeyPrefix(domain.StationSeaTac, "2022-10-02")
	SummerPrefixes          = summerPrefixes(
		[]string{domain.StationSeaTac, domain.StationPortland, domain.StationVancouver},
		[]string{"2022-07", "2022-08"},
	)
)

// Query names used in logs and metrics.
const (
	nameVancouverTemperature = "vancouver_temperature"
	namePortlandMaxWind      = "portland_max_windspeed"
	nameSeaTacDaily          = "seatac_daily_readings"
	nameSummerMaxTemperature = "summer_max_temperature"
)

func summerPrefixes(stations, months []string) []string {
	out := make([]string, 0, len(stations)*len(months))
	for _, st := range stations {
		for _, m := range months {
			out = append(out, domain.KeyPrefix(st, m))
		}
	}
	return out
}

// Runner executes the four fixed queries.
type Runner struct {
	reader  Reader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRunner creates a Runner over r.
func NewRunner(r Reader, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{reader: r, logger: logger, metrics: metrics}
}

// Run executes the queries in order and stops at the first failure.
func (q *Runner) Run(ctx context.Context, runID string) (domain.Report, error) {
	report := domain.NewReport(runID)

	err := q.observe(nameVancouverTemperature, func() (int, error) {
		res, err := TemperatureAt(ctx, q.reader, VancouverTemperatureKey)
		report.VancouverTemperature = res
		if res.Found {
			return 1, err
		}
		return 0, err
	})
	if err != nil {
		return report, err
	}

	err = q.observe(namePortlandMaxWind, func() (int, error) {
		v, scanned, err := MaxWindSpeed(ctx, q.reader, PortlandWindPrefix)
		report.PortlandMaxWindSpeed = v
		return scanned, err
	})
	if err != nil {
		return report, err
	}

	err = q.observe(nameSeaTacDaily, func() (int, error) {
		rows, err := ReadingsWithPrefix(ctx, q.reader, SeaTacDailyPrefix)
		report.SeaTacDailyReadings = rows
		return len(rows), err
	})
	if err != nil {
		return report, err
	}

	err = q.observe(nameSummerMaxTemperature, func() (int, error) {
		v, scanned, err := MaxTemperature(ctx, q.reader, SummerPrefixes)
		report.SummerMaxTemperature = v
		return scanned, err
	})
	if err != nil {
		return report, err
	}

	return report, nil
}

// observe runs one query, recording its duration and scanned row count.
func (q *Runner) observe(name string, fn func() (int, error)) error {
	q.logger.Info("executing query", "query", name)
	start := time.Now()

	scanned, err := fn()
	q.metrics.QueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	q.metrics.QueryRowsScanned.WithLabelValues(name).Add(float64(scanned))
	if err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}

	q.logger.Debug("query finished", "query", name, "rows", scanned, "duration", time.Since(start))
	return nil
}
