// Package source opens station CSV files from a local directory or a Cloud
// Storage prefix.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const gcsScheme = "gs://"

// Source opens files relative to a data location.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Close() error
}

// New selects a local or Cloud Storage source from dataDir. A "gs://bucket/prefix"
// location uses Cloud Storage; anything else is a local directory.
func New(ctx context.Context, dataDir string) (Source, error) {
	if strings.HasPrefix(dataDir, gcsScheme) {
		bucket, prefix, err := parseGCSURL(dataDir)
		if err != nil {
			return nil, err
		}
		return NewGCS(ctx, bucket, prefix)
	}
	return NewLocal(dataDir), nil
}

// Local reads files from a directory on disk.
type Local struct {
	dir string
}

// NewLocal returns a Source rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

// Open opens dir/name for reading.
func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path := filepath.Join(l.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func (l *Local) Close() error { return nil }

func parseGCSURL(u string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(u, gcsScheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid DATA_DIR %q: missing bucket", u)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}
