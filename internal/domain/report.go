package domain

import "time"

// HourlyReading is one row of the daily readings report. Temperature and
// dewpoint are parsed; the remaining columns are reported as stored.
type HourlyReading struct {
	Date        string `json:"date"`
	Hour        string `json:"hour"`
	Temperature int    `json:"temperature"`
	Dewpoint    int    `json:"dewpoint"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windspeed"`
	Pressure    string `json:"pressure"`
}

// TemperatureResult is the outcome of a single-row temperature lookup.
type TemperatureResult struct {
	Key         string `json:"key"`
	Found       bool   `json:"found"`
	Temperature int    `json:"temperature,omitempty"`
}

// Report collects the results of the four fixed queries.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Temperature at Vancouver on 2022-10-01 10:00.
	VancouverTemperature TemperatureResult `json:"vancouver_temperature"`
	// Highest wind speed in Portland during September 2022.
	PortlandMaxWindSpeed int `json:"portland_max_windspeed"`
	// All readings for SeaTac on 2022-10-02.
	SeaTacDailyReadings []HourlyReading `json:"seatac_daily_readings"`
	// Highest temperature across all stations in July and August 2022.
	SummerMaxTemperature int `json:"summer_max_temperature"`
}

// NewReport starts a report stamped with the current time.
func NewReport(runID string) Report {
	return Report{
		RunID:       runID,
		GeneratedAt: clock.Now().UTC(),
	}
}
