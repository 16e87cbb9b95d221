// Package domain models hourly weather-station readings and their layout in
// the wide-column store.
//
// # Data Source
//
// Each station publishes one CSV export of raw observations. The files are
// named after the airport and mapped to a three-letter station code:
//
//	seatac.csv     → SEA
//	vancouver.csv  → YVR
//	portland.csv   → PDX
//
// A different mapping can be supplied through a YAML station manifest.
//
// # CSV Layout
//
// The first line is a header and is skipped. Columns are positional (0-based):
//
//	0 station name (ignored)
//	1 date          "2022-10-01"
//	2 time          "10:53"
//	3 temperature   °F
//	4 dewpoint      °F
//	5 humidity      %
//	6 windspeed     mph
//	7 (ignored)
//	8 pressure
//
// Rows with fewer than nine fields, or whose date and time together are too
// short to contain an hour, are malformed and skipped. Numeric columns are not
// validated at write time; values are stored exactly as they appear in the file.
//
// # Hourly Sampling
//
// Stations report several times per hour. Only the first reading of every
// distinct hour in a file is kept, see [HourTracker].
//
// # Row Keys
//
// Rows are keyed "<station>#<YYYY-MM-DD-HH>", e.g. "YVR#2022-10-01-10".
// Keys sort by station, then chronologically, so every station/day/month
// window is a contiguous key prefix:
//
//	"PDX#2022-09"     all of September 2022 in Portland
//	"SEA#2022-10-02"  October 2, 2022 in SeaTac
//
// All five measurements live as separate cells in a single column family.
package domain
