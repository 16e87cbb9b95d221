// Package query implements the fixed weather reports over the row store.
package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

// Reader is the read side of the row store.
type Reader interface {
	ReadRow(ctx context.Context, key string) (domain.Row, bool, error)
	ReadPrefix(ctx context.Context, prefix string, fn func(domain.Row) bool) error
}

// Starting values of the running maxima.
const (
	windSpeedFloor   = 0
	temperatureFloor = -100
)

// TemperatureAt returns the temperature stored at key. Found is false when the
// row or its temperature cell is absent.
func TemperatureAt(ctx context.Context, r Reader, key string) (domain.TemperatureResult, error) {
	res := domain.TemperatureResult{Key: key}

	row, ok, err := r.ReadRow(ctx, key)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, nil
	}
	v, ok := row.Value(domain.ColumnTemperature)
	if !ok {
		return res, nil
	}

	t, err := parseInt(row.Key, domain.ColumnTemperature, v)
	if err != nil {
		return res, err
	}
	res.Found = true
	res.Temperature = t
	return res, nil
}

// MaxWindSpeed returns the highest wind speed among rows under prefix, or 0
// when none is higher. Empty wind speed values are ignored.
func MaxWindSpeed(ctx context.Context, r Reader, prefix string) (highest, scanned int, err error) {
	highest = windSpeedFloor
	var parseErr error

	err = r.ReadPrefix(ctx, prefix, func(row domain.Row) bool {
		scanned++
		v, ok := row.Value(domain.ColumnWindSpeed)
		if !ok || v == "" {
			return true
		}
		n, perr := parseInt(row.Key, domain.ColumnWindSpeed, v)
		if perr != nil {
			parseErr = perr
			return false
		}
		if n > highest {
			highest = n
		}
		return true
	})
	if err != nil {
		return 0, scanned, err
	}
	if parseErr != nil {
		return 0, scanned, parseErr
	}
	return highest, scanned, nil
}

// ReadingsWithPrefix returns every row under prefix as an hourly reading,
// in key order. All five cells must be present.
func ReadingsWithPrefix(ctx context.Context, r Reader, prefix string) ([]domain.HourlyReading, error) {
	var (
		out      []domain.HourlyReading
		parseErr error
	)

	err := r.ReadPrefix(ctx, prefix, func(row domain.Row) bool {
		hr, perr := toHourlyReading(row)
		if perr != nil {
			parseErr = perr
			return false
		}
		out = append(out, hr)
		return true
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

// MaxTemperature returns the highest temperature among rows under any of the
// prefixes, or -100 when none is higher. Rows without a temperature are ignored.
func MaxTemperature(ctx context.Context, r Reader, prefixes []string) (highest, scanned int, err error) {
	highest = temperatureFloor

	for _, prefix := range prefixes {
		var parseErr error
		err = r.ReadPrefix(ctx, prefix, func(row domain.Row) bool {
			scanned++
			v, ok := row.Value(domain.ColumnTemperature)
			if !ok {
				return true
			}
			n, perr := parseInt(row.Key, domain.ColumnTemperature, v)
			if perr != nil {
				parseErr = perr
				return false
			}
			if n > highest {
				highest = n
			}
			return true
		})
		if err != nil {
			return 0, scanned, err
		}
		if parseErr != nil {
			return 0, scanned, parseErr
		}
	}
	return highest, scanned, nil
}

func toHourlyReading(row domain.Row) (domain.HourlyReading, error) {
	key, err := domain.ParseRowKey(row.Key)
	if err != nil {
		return domain.HourlyReading{}, err
	}

	cells := make(map[string]string, 5)
	for _, col := range []string{
		domain.ColumnTemperature,
		domain.ColumnDewpoint,
		domain.ColumnHumidity,
		domain.ColumnWindSpeed,
		domain.ColumnPressure,
	} {
		v, ok := row.Value(col)
		if !ok {
			return domain.HourlyReading{}, fmt.Errorf("row %s: missing %s", row.Key, col)
		}
		cells[col] = v
	}

	temp, err := parseInt(row.Key, domain.ColumnTemperature, cells[domain.ColumnTemperature])
	if err != nil {
		return domain.HourlyReading{}, err
	}
	dew, err := parseInt(row.Key, domain.ColumnDewpoint, cells[domain.ColumnDewpoint])
	if err != nil {
		return domain.HourlyReading{}, err
	}

	return domain.HourlyReading{
		Date:        key.Date,
		Hour:        key.Hour,
		Temperature: temp,
		Dewpoint:    dew,
		Humidity:    cells[domain.ColumnHumidity],
		WindSpeed:   cells[domain.ColumnWindSpeed],
		Pressure:    cells[domain.ColumnPressure],
	}, nil
}

func parseInt(key, column, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("row %s: parse %s %q: %w", key, column, v, err)
	}
	return n, nil
}
