package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

const testBrokers = "broker1:9092,broker2:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "iitj-bigtable-project", cfg.BigtableProject)
	assert.Equal(t, "iitj-bigtable-instance", cfg.BigtableInstance)
	assert.Equal(t, "weather", cfg.BigtableTable)
	assert.Equal(t, "sensor", cfg.ColumnFamily)
	assert.Empty(t, cfg.BigtableAppProfile)
	assert.Empty(t, cfg.CredentialsFile)
	assert.False(t, cfg.BigtableClientMetrics)
	assert.Equal(t, "data/", cfg.DataDir)
	assert.Equal(t, domain.DefaultStations(), cfg.Stations)
	assert.Equal(t, 85000, cfg.BatchMutationLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.HTTPEnabled)
	assert.Empty(t, cfg.HTTPAddr)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "weather-query-reports", cfg.KafkaReportTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("BIGTABLE_PROJECT", "test-project")
	t.Setenv("BIGTABLE_INSTANCE", "test-instance")
	t.Setenv("BIGTABLE_TABLE", "readings")
	t.Setenv("BIGTABLE_COLUMN_FAMILY", "m")
	t.Setenv("BIGTABLE_APP_PROFILE", "batch")
	t.Setenv("BIGTABLE_CREDENTIALS_FILE", "/secrets/sa.json")
	t.Setenv("BIGTABLE_CLIENT_METRICS", "true")
	t.Setenv("DATA_DIR", "gs://weather-raw/2022/")
	t.Setenv("BATCH_MUTATION_LIMIT", "500")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", testBrokers)
	t.Setenv("KAFKA_REPORT_TOPIC", "custom-reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-project", cfg.BigtableProject)
	assert.Equal(t, "test-instance", cfg.BigtableInstance)
	assert.Equal(t, "readings", cfg.BigtableTable)
	assert.Equal(t, "m", cfg.ColumnFamily)
	assert.Equal(t, "batch", cfg.BigtableAppProfile)
	assert.Equal(t, "/secrets/sa.json", cfg.CredentialsFile)
	assert.True(t, cfg.BigtableClientMetrics)
	assert.Equal(t, "gs://weather-raw/2022/", cfg.DataDir)
	assert.Equal(t, 500, cfg.BatchMutationLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaReportTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchMutationLimit(t *testing.T) {
	for _, v := range []string{"0", "-5", "abc", "100001"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("BATCH_MUTATION_LIMIT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "BATCH_MUTATION_LIMIT")
		})
	}
}

func TestLoad_BatchMutationLimitUpperBound(t *testing.T) {
	t.Setenv("BATCH_MUTATION_LIMIT", "100000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MaxBatchMutationLimit, cfg.BatchMutationLimit)
}

func TestLoad_HTTPEnabledWithoutAddrUsesDefault(t *testing.T) {
	t.Setenv("HTTP_ENABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_HTTPExplicitlyDisabled(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("HTTP_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.HTTPEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBrokers)
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_StationManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stations:
  - id: BLI
    file: bellingham.csv
  - id: SEA
    file: seatac.csv
`), 0o600))
	t.Setenv("STATION_MANIFEST", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.Station{
		{ID: "BLI", File: "bellingham.csv"},
		{ID: "SEA", File: "seatac.csv"},
	}, cfg.Stations)
}

func TestLoad_StationManifestMissing(t *testing.T) {
	t.Setenv("STATION_MANIFEST", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATION_MANIFEST")
}

func TestParseStationManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "stations: [unterminated"},
		{name: "no stations", data: "stations: []"},
		{name: "duplicate id", data: "stations:\n  - {id: SEA, file: a.csv}\n  - {id: SEA, file: b.csv}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStationManifest([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "STATION_MANIFEST")
		})
	}
}
