package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Column qualifiers within the measurement column family.
const (
	ColumnTemperature = "temperature"
	ColumnDewpoint    = "dewpoint"
	ColumnHumidity    = "humidity"
	ColumnWindSpeed   = "windspeed"
	ColumnPressure    = "pressure"
)

// Positional CSV columns.
const (
	fieldDate        = 1
	fieldTime        = 2
	fieldTemperature = 3
	fieldDewpoint    = 4
	fieldHumidity    = 5
	fieldWindSpeed   = 6
	fieldPressure    = 8

	minFields = fieldPressure + 1

	// len("2022-10-01 10")
	hourPrefixLen = 13
)

// ErrMalformedRow marks a CSV row that cannot be mapped to a reading.
var ErrMalformedRow = errors.New("malformed row")

// Reading is one hourly observation taken from a station CSV file.
// Measurements are kept as the raw decimal text found in the file.
type Reading struct {
	StationID   string
	Hour        string // "2022-10-01-10"
	Temperature string
	Dewpoint    string
	Humidity    string
	WindSpeed   string
	Pressure    string
}

// SplitLine splits one physical CSV line on commas. Trailing empty fields are
// dropped, so a row whose last columns are blank counts as short. Quotes have
// no special meaning.
func SplitLine(line string) []string {
	fields := strings.Split(line, ",")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// ParseReading maps the fields of one CSV row to a Reading for the given station.
func ParseReading(stationID string, fields []string) (Reading, error) {
	if len(fields) < minFields {
		return Reading{}, fmt.Errorf("%w: %d fields, need %d", ErrMalformedRow, len(fields), minFields)
	}

	dateTime := fields[fieldDate] + " " + fields[fieldTime]
	if len(dateTime) < hourPrefixLen {
		return Reading{}, fmt.Errorf("%w: timestamp %q has no hour", ErrMalformedRow, dateTime)
	}
	hour := strings.ReplaceAll(dateTime[:hourPrefixLen], " ", "-")

	return Reading{
		StationID:   stationID,
		Hour:        hour,
		Temperature: fields[fieldTemperature],
		Dewpoint:    fields[fieldDewpoint],
		Humidity:    fields[fieldHumidity],
		WindSpeed:   fields[fieldWindSpeed],
		Pressure:    fields[fieldPressure],
	}, nil
}

// RowKey returns the store key for the reading.
func (r Reading) RowKey() string {
	return RowKey(r.StationID, r.Hour)
}

// Mutation converts the reading into a write of its five measurement cells.
func (r Reading) Mutation() RowMutation {
	return RowMutation{
		Key: r.RowKey(),
		Cells: []Cell{
			{Column: ColumnTemperature, Value: r.Temperature},
			{Column: ColumnDewpoint, Value: r.Dewpoint},
			{Column: ColumnHumidity, Value: r.Humidity},
			{Column: ColumnWindSpeed, Value: r.WindSpeed},
			{Column: ColumnPressure, Value: r.Pressure},
		},
	}
}

// Cell is a single column value within a row.
type Cell struct {
	Column string
	Value  string
}

// RowMutation sets a group of cells on one row.
type RowMutation struct {
	Key   string
	Cells []Cell
}

// MutationCount is the number of cell mutations the write carries.
func (m RowMutation) MutationCount() int {
	return len(m.Cells)
}

// Row is the read-side view of a stored row: the latest value of each column.
type Row struct {
	Key   string
	Cells map[string]string
}

// Value returns the cell value for column and whether the cell exists.
func (r Row) Value(column string) (string, bool) {
	v, ok := r.Cells[column]
	return v, ok
}

// HourTracker remembers which hours of a file have already produced a row.
type HourTracker struct {
	seen map[string]struct{}
}

// NewHourTracker returns an empty tracker. Use one tracker per input file.
func NewHourTracker() *HourTracker {
	return &HourTracker{seen: make(map[string]struct{})}
}

// First reports whether hour is seen for the first time, and records it.
func (t *HourTracker) First(hour string) bool {
	if _, ok := t.seen[hour]; ok {
		return false
	}
	t.seen[hour] = struct{}{}
	return true
}

// Len is the number of distinct hours recorded.
func (t *HourTracker) Len() int {
	return len(t.seen)
}
