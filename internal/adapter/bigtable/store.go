package bigtable

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"cloud.google.com/go/bigtable"
	"github.com/hashicorp/go-multierror"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/couchcryptid/weather-bigtable-etl/internal/domain"
)

// ErrTableNotFound is returned by DeleteTable when the table does not exist.
var ErrTableNotFound = domain.ErrTableNotFound

// Settings identifies the instance, table and column family to use.
type Settings struct {
	Project         string
	Instance        string
	Table           string
	Family          string
	AppProfile      string
	CredentialsFile string
	// ClientMetrics enables the SDK's built-in client-side metrics export.
	ClientMetrics bool
}

// Store reads and writes weather rows. It implements pipeline.BatchWriter
// and query.Reader.
type Store struct {
	client *bigtable.Client
	admin  *bigtable.AdminClient
	table  *bigtable.Table
	name   string
	family string
	logger *slog.Logger
}

// Open connects the data and admin clients. BIGTABLE_EMULATOR_HOST is honored
// by the SDK; extra options (such as a pre-dialed connection) are appended.
func Open(ctx context.Context, s Settings, logger *slog.Logger, opts ...option.ClientOption) (*Store, error) {
	if s.CredentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(s.CredentialsFile)}, opts...)
	}

	cfg := bigtable.ClientConfig{AppProfile: s.AppProfile}
	if !s.ClientMetrics {
		cfg.MetricsProvider = bigtable.NoopMetricsProvider{}
	}

	client, err := bigtable.NewClientWithConfig(ctx, s.Project, s.Instance, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigtable client: %w", err)
	}
	admin, err := bigtable.NewAdminClient(ctx, s.Project, s.Instance, opts...)
	if err != nil {
		client.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("create bigtable admin client: %w", err)
	}

	logger.Info("connected to bigtable", "project", s.Project, "instance", s.Instance, "table", s.Table)
	return &Store{
		client: client,
		admin:  admin,
		table:  client.Open(s.Table),
		name:   s.Table,
		family: s.Family,
		logger: logger,
	}, nil
}

// DeleteTable drops the table. ErrTableNotFound is returned when it does not exist.
func (s *Store) DeleteTable(ctx context.Context) error {
	if err := s.admin.DeleteTable(ctx, s.name); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("delete table %s: %w", s.name, ErrTableNotFound)
		}
		return fmt.Errorf("delete table %s: %w", s.name, err)
	}
	s.logger.Info("table deleted", "table", s.name)
	return nil
}

// EnsureTable creates the table with its column family when absent. Only the
// latest version of each cell is retained. It reports whether it created the table.
func (s *Store) EnsureTable(ctx context.Context) (bool, error) {
	tables, err := s.admin.Tables(ctx)
	if err != nil {
		return false, fmt.Errorf("list tables: %w", err)
	}
	if slices.Contains(tables, s.name) {
		s.logger.Info("table already exists", "table", s.name)
		return false, nil
	}

	if err := s.admin.CreateTable(ctx, s.name); err != nil {
		return false, fmt.Errorf("create table %s: %w", s.name, err)
	}
	if err := s.admin.CreateColumnFamily(ctx, s.name, s.family); err != nil {
		return false, fmt.Errorf("create column family %s: %w", s.family, err)
	}
	if err := s.admin.SetGCPolicy(ctx, s.name, s.family, bigtable.MaxVersionsPolicy(1)); err != nil {
		return false, fmt.Errorf("set gc policy on %s: %w", s.family, err)
	}

	s.logger.Info("table created", "table", s.name, "family", s.family)
	return true, nil
}

// ApplyBatch writes all rows in a single bulk request.
func (s *Store) ApplyBatch(ctx context.Context, rows []domain.RowMutation) error {
	if len(rows) == 0 {
		return nil
	}

	keys := make([]string, len(rows))
	muts := make([]*bigtable.Mutation, len(rows))
	for i, r := range rows {
		m := bigtable.NewMutation()
		for _, c := range r.Cells {
			m.Set(s.family, c.Column, bigtable.Now(), []byte(c.Value))
		}
		keys[i] = r.Key
		muts[i] = m
	}

	rowErrs, err := s.table.ApplyBulk(ctx, keys, muts)
	if err != nil {
		return fmt.Errorf("apply bulk: %w", err)
	}

	var result *multierror.Error
	for i, rerr := range rowErrs {
		if rerr != nil {
			result = multierror.Append(result, fmt.Errorf("row %s: %w", keys[i], rerr))
		}
	}
	return result.ErrorOrNil()
}

// ReadRow fetches a single row. The boolean is false when the row is absent.
func (s *Store) ReadRow(ctx context.Context, key string) (domain.Row, bool, error) {
	row, err := s.table.ReadRow(ctx, key, bigtable.RowFilter(bigtable.LatestNFilter(1)))
	if err != nil {
		return domain.Row{}, false, fmt.Errorf("read row %s: %w", key, err)
	}
	if len(row) == 0 {
		return domain.Row{}, false, nil
	}
	return s.toRow(key, row), true, nil
}

// ReadPrefix streams every row whose key starts with prefix, in key order.
// Returning false from fn stops the scan.
func (s *Store) ReadPrefix(ctx context.Context, prefix string, fn func(domain.Row) bool) error {
	err := s.table.ReadRows(ctx, bigtable.PrefixRange(prefix), func(r bigtable.Row) bool {
		return fn(s.toRow(r.Key(), r))
	}, bigtable.RowFilter(bigtable.LatestNFilter(1)))
	if err != nil {
		return fmt.Errorf("read prefix %s: %w", prefix, err)
	}
	return nil
}

// Close releases both clients.
func (s *Store) Close() error {
	var result *multierror.Error
	if err := s.client.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close data client: %w", err))
	}
	if err := s.admin.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close admin client: %w", err))
	}
	return result.ErrorOrNil()
}

// toRow flattens the cells of our column family into qualifier -> value.
func (s *Store) toRow(key string, r bigtable.Row) domain.Row {
	out := domain.Row{Key: key, Cells: make(map[string]string)}
	for _, item := range r[s.family] {
		qualifier := strings.TrimPrefix(item.Column, s.family+":")
		if _, ok := out.Cells[qualifier]; ok {
			continue
		}
		out.Cells[qualifier] = string(item.Value)
	}
	return out
}
