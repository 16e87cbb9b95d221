package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	bigtableadapter "github.com/couchcryptid/weather-bigtable-etl/internal/adapter/bigtable"
	httpadapter "github.com/couchcryptid/weather-bigtable-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-bigtable-etl/internal/adapter/kafka"
	"github.com/couchcryptid/weather-bigtable-etl/internal/adapter/source"
	"github.com/couchcryptid/weather-bigtable-etl/internal/app"
	"github.com/couchcryptid/weather-bigtable-etl/internal/config"
	"github.com/couchcryptid/weather-bigtable-etl/internal/observability"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "weatherbt",
		Short: "Load station weather readings into Bigtable and report on them",
		Long: `weatherbt recreates the weather table, loads the SeaTac, Vancouver and
Portland CSV files from DATA_DIR and prints the four weather reports.
Running it without a subcommand is the same as "weatherbt run".`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			loadEnvFile(envFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJob(cmd.Context(), runAll)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", os.Getenv("ENV_FILE_PATH"),
		"dotenv file to load before reading the environment (default .env)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Reset the table, load every station file and run the reports",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runJob(cmd.Context(), runAll)
			},
		},
		&cobra.Command{
			Use:   "load",
			Short: "Reset the table and load every station file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runJob(cmd.Context(), loadOnly)
			},
		},
		&cobra.Command{
			Use:   "query",
			Short: "Run the reports against the existing table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runJob(cmd.Context(), queryOnly)
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Delete the table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runJob(cmd.Context(), func(ctx context.Context, j *app.Job) error {
					return j.Drop(ctx)
				})
			},
		},
	)
	return root
}

func runAll(ctx context.Context, j *app.Job) error {
	_, err := j.Run(ctx)
	return err
}

func loadOnly(ctx context.Context, j *app.Job) error {
	if err := j.Reset(ctx); err != nil {
		return err
	}
	_, err := j.Load(ctx)
	return err
}

func queryOnly(ctx context.Context, j *app.Job) error {
	j.SkipLoad()
	_, err := j.Query(ctx)
	return err
}

// loadEnvFile applies a dotenv file. A missing default .env is not an error.
func loadEnvFile(path string) {
	if path == "" {
		if err := godotenv.Load(); err != nil {
			slog.Debug(".env file not loaded", "error", err)
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("env file could not be loaded", "path", path, "error", err)
	}
}

// runJob builds the job from the environment, serves the operational
// endpoints while it runs, and releases every client afterwards.
func runJob(parent context.Context, phase func(context.Context, *app.Job) error) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to bigtable")
	store, err := bigtableadapter.Open(ctx, bigtableadapter.Settings{
		Project:         cfg.BigtableProject,
		Instance:        cfg.BigtableInstance,
		Table:           cfg.BigtableTable,
		Family:          cfg.ColumnFamily,
		AppProfile:      cfg.BigtableAppProfile,
		CredentialsFile: cfg.CredentialsFile,
		ClientMetrics:   cfg.BigtableClientMetrics,
	}, logger)
	if err != nil {
		logger.Error("bigtable connection failed", "error", err)
		return err
	}

	src, err := source.New(ctx, cfg.DataDir)
	if err != nil {
		store.Close() //nolint:errcheck // already failing
		logger.Error("data source unavailable", "data_dir", cfg.DataDir, "error", err)
		return err
	}

	opts := app.Options{
		Store:              store,
		Source:             src,
		Stations:           cfg.Stations,
		BatchMutationLimit: cfg.BatchMutationLimit,
		Out:                os.Stdout,
		Closers:            []io.Closer{src, store},
		Logger:             logger,
		Metrics:            metrics,
	}
	if cfg.KafkaEnabled {
		pub := kafkaadapter.NewPublisher(cfg, logger)
		opts.Publisher = pub
		opts.Closers = append(opts.Closers, pub)
		logger.Info("report publishing enabled", "topic", cfg.KafkaReportTopic)
	}

	job := app.New(opts)

	if cfg.HTTPEnabled {
		srv := httpadapter.NewServer(cfg.HTTPAddr, job, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	phaseErr := job.Execute(ctx, phase)
	if phaseErr != nil {
		if ctx.Err() != nil {
			logger.Info("interrupted", "reason", ctx.Err())
		}
		logger.Error("job failed", "error", phaseErr)
	}

	if err := job.Close(); err != nil {
		logger.Error("close error", "error", err)
	}
	logger.Info("shutdown complete")
	return phaseErr
}
