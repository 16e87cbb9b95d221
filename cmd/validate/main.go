// Command validate performs offline integrity checks on a directory of station
// CSV files before they are loaded: file shape, duplicate hours, numeric
// columns used by the reports, and coverage of the report windows.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data -max-duplicate-share 0.5
//
// The station list comes from -manifest (default $STATION_MANIFEST) when set,
// otherwise the three built-in stations.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-bigtable-etl/internal/config"
	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
	"github.com/couchcryptid/weather-bigtable-etl/internal/query"
)

// maxErrorsPerPhase caps the detail printed for a failing phase.
const maxErrorsPerPhase = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// stationFile is a station CSV split into header and data rows.
type stationFile struct {
	station domain.Station
	header  []string
	rows    []csvRow
}

type csvRow struct {
	lineNum int
	fields  []string
}

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing the station CSV files")
	maxDup := flag.Float64("max-duplicate-share", 0.5, "largest acceptable share of rows repeating an hour")
	manifest := flag.String("manifest", os.Getenv("STATION_MANIFEST"), "YAML station manifest; empty uses the built-in stations")
	flag.Parse()

	stations, err := resolveStations(*manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if code := run(os.Stdout, *dataDir, stations, *maxDup); code != 0 {
		os.Exit(code)
	}
}

// resolveStations mirrors the loader: a manifest path wins over the defaults.
func resolveStations(manifest string) ([]domain.Station, error) {
	if path := strings.TrimSpace(manifest); path != "" {
		return config.LoadStationManifest(path)
	}
	return domain.DefaultStations(), nil
}

func run(w io.Writer, dataDir string, stations []domain.Station, maxDup float64) int {
	fmt.Fprintln(w, "=== Weather Data Integrity Validation ===")
	fmt.Fprintln(w)

	files := make([]stationFile, 0, len(stations))
	for _, st := range stations {
		f, err := loadStationFile(dataDir, st)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load %s: %v\n", st.ID, err)
			return 1
		}
		files = append(files, f)
	}

	readings := firstReadings(files)
	phases := []*phase{
		validateShape(files),
		validateDuplicates(files, maxDup),
		validateNumeric(files, readings),
		validateCoverage(readings),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	for _, f := range files {
		fmt.Fprintf(w, "%s: %d rows, %d distinct hours\n", f.station.ID, len(f.rows), len(readings[f.station.ID]))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsPerPhase {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxErrorsPerPhase)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadStationFile(dir string, st domain.Station) (stationFile, error) {
	f, err := os.Open(filepath.Join(dir, st.File))
	if err != nil {
		return stationFile{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	out := stationFile{station: st}
	line := 0
	for sc.Scan() {
		line++
		rec := domain.SplitLine(sc.Text())
		if line == 1 {
			out.header = rec
			continue
		}
		out.rows = append(out.rows, csvRow{lineNum: line, fields: rec})
	}
	if err := sc.Err(); err != nil {
		return stationFile{}, err
	}
	if line == 0 {
		return stationFile{}, fmt.Errorf("%s is empty", st.File)
	}
	return out, nil
}

// firstReadings keeps the first parseable reading of each hour, per station,
// the same rows the loader writes.
func firstReadings(files []stationFile) map[string]map[string]domain.Reading {
	out := make(map[string]map[string]domain.Reading, len(files))
	for _, f := range files {
		hours := make(map[string]domain.Reading)
		for _, row := range f.rows {
			rd, err := domain.ParseReading(f.station.ID, row.fields)
			if err != nil {
				continue
			}
			if _, ok := hours[rd.Hour]; !ok {
				hours[rd.Hour] = rd
			}
		}
		out[f.station.ID] = hours
	}
	return out
}

// ── Phases ──

func validateShape(files []stationFile) *phase {
	p := &phase{name: "Phase 1: File shape"}
	for _, f := range files {
		if len(f.header) == 0 || !strings.EqualFold(strings.TrimSpace(f.header[0]), "STATION") {
			p.errorf("%s: first line does not look like a header: %v", f.station.File, f.header)
		}
		if len(f.rows) == 0 {
			p.errorf("%s: no data rows", f.station.File)
		}
		for _, row := range f.rows {
			if _, err := domain.ParseReading(f.station.ID, row.fields); err != nil {
				p.errorf("%s:%d: %v", f.station.File, row.lineNum, err)
			}
		}
	}
	return p
}

func validateDuplicates(files []stationFile, maxShare float64) *phase {
	p := &phase{name: "Phase 2: Duplicate hours"}
	for _, f := range files {
		tracker := domain.NewHourTracker()
		parsed, dupes := 0, 0
		for _, row := range f.rows {
			rd, err := domain.ParseReading(f.station.ID, row.fields)
			if err != nil {
				continue
			}
			parsed++
			if !tracker.First(rd.Hour) {
				dupes++
			}
		}
		if parsed == 0 {
			continue
		}
		if share := float64(dupes) / float64(parsed); share > maxShare {
			p.errorf("%s: %d of %d rows repeat an hour (%.0f%% > %.0f%%)",
				f.station.File, dupes, parsed, share*100, maxShare*100)
		}
	}
	return p
}

func validateNumeric(files []stationFile, readings map[string]map[string]domain.Reading) *phase {
	p := &phase{name: "Phase 3: Numeric report columns"}
	for _, f := range files {
		id := f.station.ID
		for hour, rd := range readings[id] {
			key := domain.RowKey(id, hour)
			checkInt(p, key, domain.ColumnTemperature, rd.Temperature, false)
			checkInt(p, key, domain.ColumnDewpoint, rd.Dewpoint, false)
			checkInt(p, key, domain.ColumnWindSpeed, rd.WindSpeed, true)
		}
	}
	return p
}

func checkInt(p *phase, key, column, v string, allowEmpty bool) {
	if v == "" && allowEmpty {
		return
	}
	if _, err := strconv.Atoi(v); err != nil {
		p.errorf("%s: %s %q is not an integer", key, column, v)
	}
}

func validateCoverage(readings map[string]map[string]domain.Reading) *phase {
	p := &phase{name: "Phase 4: Report window coverage"}

	has := func(prefix string) int {
		station, period, _ := strings.Cut(prefix, domain.KeySeparator)
		n := 0
		for hour := range readings[station] {
			if strings.HasPrefix(hour, period) {
				n++
			}
		}
		return n
	}

	if has(query.VancouverTemperatureKey) == 0 {
		p.errorf("no reading for %s", query.VancouverTemperatureKey)
	}
	if has(query.PortlandWindPrefix) == 0 {
		p.errorf("no readings under %s", query.PortlandWindPrefix)
	}
	if n := has(query.SeaTacDailyPrefix); n != 24 {
		p.errorf("%s has %d of 24 hours", query.SeaTacDailyPrefix, n)
	}
	for _, prefix := range query.SummerPrefixes {
		if has(prefix) == 0 {
			p.errorf("no readings under %s", prefix)
		}
	}
	return p
}
