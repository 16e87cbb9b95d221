package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

// stationManifest is the on-disk form of STATION_MANIFEST:
//
//	stations:
//	  - id: SEA
//	    file: seatac.csv
type stationManifest struct {
	Stations []domain.Station `yaml:"stations"`
}

// LoadStationManifest reads and validates a YAML station manifest.
func LoadStationManifest(path string) ([]domain.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read STATION_MANIFEST: %w", err)
	}
	return parseStationManifest(data)
}

func parseStationManifest(data []byte) ([]domain.Station, error) {
	var m stationManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse STATION_MANIFEST: %w", err)
	}
	if err := domain.ValidateStations(m.Stations); err != nil {
		return nil, fmt.Errorf("invalid STATION_MANIFEST: %w", err)
	}
	return m.Stations, nil
}
