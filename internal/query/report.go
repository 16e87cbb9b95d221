package query

import (
	"fmt"
	"io"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

const dailyHeader = "DATE       HOUR TEMP DEW HUMIDITY WINDSPEED PRESSURE"

// notFoundTemperature is printed when the single-row lookup finds nothing.
const notFoundTemperature = -999

// WriteReport prints the report in the console layout of the batch job.
func WriteReport(w io.Writer, r domain.Report) error {
	temp := notFoundTemperature
	if r.VancouverTemperature.Found {
		temp = r.VancouverTemperature.Temperature
	}

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("Query1_Result: Temperature At Vancouver On 2022-10-01 10:00: %d degree farenheit \n", temp)
	printf("Query2_Result: Highest Wind Speed In Portland In Sept 2022: %d miles/h\n", r.PortlandMaxWindSpeed)
	printf("Query3_Result: All Readings For SeaTac On October 2, 2022:\n")
	printf("%s\n", dailyHeader)
	for _, h := range r.SeaTacDailyReadings {
		printf("%s %s   %d   %d  %s        %s         %s\n",
			h.Date, h.Hour, h.Temperature, h.Dewpoint, h.Humidity, h.WindSpeed, h.Pressure)
	}
	printf("\n")
	printf("Query4_Result: Highest Temperature In Summer 2022: %d degree farenheit \n", r.SummerMaxTemperature)
	return err
}
