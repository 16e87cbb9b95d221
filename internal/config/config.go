package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

// MaxBatchMutationLimit is the largest number of cell mutations a single bulk
// request may carry.
const MaxBatchMutationLimit = 100000

// Config holds all job settings, populated from environment variables.
type Config struct {
	BigtableProject       string
	BigtableInstance      string
	BigtableTable         string
	ColumnFamily          string
	BigtableAppProfile    string
	CredentialsFile       string
	BigtableClientMetrics bool

	DataDir            string
	Stations           []domain.Station
	BatchMutationLimit int

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Operational HTTP endpoints.
	HTTPAddr    string
	HTTPEnabled bool

	// Report publishing.
	KafkaBrokers     []string
	KafkaEnabled     bool
	KafkaReportTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchLimit, err := parseBatchMutationLimit()
	if err != nil {
		return nil, err
	}

	stations := domain.DefaultStations()
	if path := strings.TrimSpace(os.Getenv("STATION_MANIFEST")); path != "" {
		stations, err = LoadStationManifest(path)
		if err != nil {
			return nil, err
		}
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	httpEnabled := httpAddr != ""
	if v := os.Getenv("HTTP_ENABLED"); v != "" {
		httpEnabled = v == "true"
	}
	if httpEnabled && httpAddr == "" {
		httpAddr = ":8080"
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		BigtableProject:       sharedcfg.EnvOrDefault("BIGTABLE_PROJECT", "iitj-bigtable-project"),
		BigtableInstance:      sharedcfg.EnvOrDefault("BIGTABLE_INSTANCE", "iitj-bigtable-instance"),
		BigtableTable:         sharedcfg.EnvOrDefault("BIGTABLE_TABLE", "weather"),
		ColumnFamily:          sharedcfg.EnvOrDefault("BIGTABLE_COLUMN_FAMILY", "sensor"),
		BigtableAppProfile:    os.Getenv("BIGTABLE_APP_PROFILE"),
		CredentialsFile:       os.Getenv("BIGTABLE_CREDENTIALS_FILE"),
		BigtableClientMetrics: os.Getenv("BIGTABLE_CLIENT_METRICS") == "true",

		DataDir:            sharedcfg.EnvOrDefault("DATA_DIR", "data/"),
		Stations:           stations,
		BatchMutationLimit: batchLimit,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		HTTPAddr:    httpAddr,
		HTTPEnabled: httpEnabled,

		KafkaBrokers:     brokers,
		KafkaEnabled:     kafkaEnabled,
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "weather-query-reports"),
	}

	if cfg.BigtableProject == "" {
		return nil, errors.New("BIGTABLE_PROJECT is required")
	}
	if cfg.BigtableInstance == "" {
		return nil, errors.New("BIGTABLE_INSTANCE is required")
	}
	if cfg.BigtableTable == "" {
		return nil, errors.New("BIGTABLE_TABLE is required")
	}
	if cfg.ColumnFamily == "" {
		return nil, errors.New("BIGTABLE_COLUMN_FAMILY is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func parseBatchMutationLimit() (int, error) {
	s := sharedcfg.EnvOrDefault("BATCH_MUTATION_LIMIT", "85000")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > MaxBatchMutationLimit {
		return 0, fmt.Errorf("invalid BATCH_MUTATION_LIMIT %q (allowed: 1-%d)", s, MaxBatchMutationLimit)
	}
	return n, nil
}
