// Command genmock writes synthetic hourly station CSV files in the layout the
// loader reads, for local and emulator runs. Every generated row is checked
// with the domain parser so the files match real loader behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data -start 2022-07-01 -end 2022-10-31 -dupes 0.1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

var header = []string{"STATION", "DATE", "TIME", "TEMP", "DEWPOINT", "HUMIDITY", "WINDSPEED", "WINDDIR", "PRESSURE"}

var windDirs = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW", "VAR"}

// profile holds the rough climate used to shape a station's readings.
type profile struct {
	name     string
	summerHi float64 // typical July afternoon high, F
	spread   float64 // daily swing, F
	maxWind  int
}

var profiles = map[string]profile{
	domain.StationSeaTac:    {name: "SEATTLE TACOMA AIRPORT", summerHi: 78, spread: 18, maxWind: 24},
	domain.StationVancouver: {name: "VANCOUVER INTL", summerHi: 72, spread: 14, maxWind: 28},
	domain.StationPortland:  {name: "PORTLAND INTL", summerHi: 84, spread: 22, maxWind: 30},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "directory to write station CSV files to")
	startStr := flag.String("start", "2022-07-01", "first day to generate (YYYY-MM-DD)")
	endStr := flag.String("end", "2022-10-31", "last day to generate (YYYY-MM-DD)")
	dupes := flag.Float64("dupes", 0.1, "share of hours that get a second, later reading")
	seed := flag.Uint64("seed", 2022, "random seed")
	flag.Parse()

	start, err := time.Parse(time.DateOnly, *startStr)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, *endStr)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("-end %s is before -start %s", *endStr, *startStr)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, 0))
	for _, st := range domain.DefaultStations() {
		path := filepath.Join(*outDir, st.File)
		n, err := writeFile(path, st.ID, start, end, *dupes, rng)
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("%s: %d rows -> %s", st.ID, n, path)
	}
	return nil
}

func writeFile(path, stationID string, start, end time.Time, dupes float64, rng *rand.Rand) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := generate(f, stationID, start, end, dupes, rng)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// generate writes a header and one reading per hour from start through the
// end day, plus an occasional second reading later in the same hour.
func generate(w io.Writer, stationID string, start, end time.Time, dupes float64, rng *rand.Rand) (int, error) {
	p, ok := profiles[stationID]
	if !ok {
		p = profile{name: stationID, summerHi: 75, spread: 18, maxWind: 25}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	rows := 0
	last := end.AddDate(0, 0, 1)
	for ts := start; ts.Before(last); ts = ts.Add(time.Hour) {
		minutes := []int{53}
		if rng.Float64() < dupes {
			minutes = append(minutes, 58)
		}
		for _, m := range minutes {
			rec := reading(p, ts.Add(time.Duration(m)*time.Minute), rng)
			if _, err := domain.ParseReading(stationID, rec); err != nil {
				return rows, fmt.Errorf("generated unparseable row %v: %w", rec, err)
			}
			if err := cw.Write(rec); err != nil {
				return rows, err
			}
			rows++
		}
	}

	cw.Flush()
	return rows, cw.Error()
}

func reading(p profile, ts time.Time, rng *rand.Rand) []string {
	// Seasonal cooling from July onward plus a daily cycle peaking mid-afternoon.
	days := ts.Sub(time.Date(ts.Year(), time.July, 15, 0, 0, 0, 0, time.UTC)).Hours() / 24
	seasonal := p.summerHi - math.Max(0, days)*0.25 - math.Max(0, -days)*0.1
	daily := math.Cos((float64(ts.Hour())-15)/24*2*math.Pi) * p.spread / 2
	temp := int(math.Round(seasonal - p.spread/2 + daily + rng.NormFloat64()*2))

	dew := temp - 5 - rng.IntN(20)
	humidity := 100 - 5*(temp-dew)
	if humidity < 10 {
		humidity = 10
	}

	return []string{
		p.name,
		ts.Format(time.DateOnly),
		ts.Format("15:04"),
		fmt.Sprint(temp),
		fmt.Sprint(dew),
		fmt.Sprint(humidity),
		fmt.Sprint(rng.IntN(p.maxWind + 1)),
		windDirs[rng.IntN(len(windDirs))],
		fmt.Sprintf("%.2f", 29.6+rng.Float64()*0.8),
	}
}
