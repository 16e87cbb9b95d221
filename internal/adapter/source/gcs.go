package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS reads objects under a bucket prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates a storage client using application default credentials
// unless opts say otherwise.
func NewGCS(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Open returns a reader for gs://bucket/prefix+name. A missing object
// reports fs.ErrNotExist.
func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	object := g.prefix + name
	r, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			err = fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
		return nil, fmt.Errorf("open gs://%s/%s: %w", g.bucket, object, err)
	}
	return r, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
