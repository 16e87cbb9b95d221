package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Station codes used by the fixed queries.
const (
	StationSeaTac    = "SEA"
	StationVancouver = "YVR"
	StationPortland  = "PDX"
)

// Station ties a station code to the CSV file holding its readings.
type Station struct {
	ID   string `yaml:"id"`
	File string `yaml:"file"`
}

// DefaultStations returns the built-in station set in load order.
func DefaultStations() []Station {
	return []Station{
		{ID: StationSeaTac, File: "seatac.csv"},
		{ID: StationVancouver, File: "vancouver.csv"},
		{ID: StationPortland, File: "portland.csv"},
	}
}

// ValidateStations rejects empty codes, codes containing the key separator,
// missing file names and duplicate codes.
func ValidateStations(stations []Station) error {
	if len(stations) == 0 {
		return errors.New("no stations configured")
	}
	seen := make(map[string]struct{}, len(stations))
	for i, s := range stations {
		if s.ID == "" {
			return fmt.Errorf("station %d: id is required", i)
		}
		if strings.Contains(s.ID, KeySeparator) {
			return fmt.Errorf("station %q: id must not contain %q", s.ID, KeySeparator)
		}
		if s.File == "" {
			return fmt.Errorf("station %q: file is required", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("station %q: duplicate id", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}
