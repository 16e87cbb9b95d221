package domain

import (
	"fmt"
	"strings"
)

// KeySeparator splits the station code from the hour in a row key.
const KeySeparator = "#"

// RowKey builds "<station>#<hour>".
func RowKey(stationID, hour string) string {
	return stationID + KeySeparator + hour
}

// KeyPrefix builds the scan prefix for a station and a leading part of the
// hour, e.g. KeyPrefix("PDX", "2022-09") = "PDX#2022-09".
func KeyPrefix(stationID, period string) string {
	return stationID + KeySeparator + period
}

// ParsedKey holds the components of a row key.
type ParsedKey struct {
	StationID string
	Date      string // "2022-10-02"
	Hour      string // "07"
}

// ParseRowKey splits "SEA#2022-10-02-07" into station, date and hour.
func ParseRowKey(key string) (ParsedKey, error) {
	station, stamp, ok := strings.Cut(key, KeySeparator)
	if !ok || station == "" {
		return ParsedKey{}, fmt.Errorf("parse row key %q: missing station separator", key)
	}

	parts := strings.Split(stamp, "-")
	if len(parts) != 4 {
		return ParsedKey{}, fmt.Errorf("parse row key %q: want YYYY-MM-DD-HH", key)
	}

	return ParsedKey{
		StationID: station,
		Date:      parts[0] + "-" + parts[1] + "-" + parts[2],
		Hour:      parts[3],
	}, nil
}
