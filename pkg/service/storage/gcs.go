package storage

import (
	"context"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/utils/safe"
)

// GCS stores objects in a Google Cloud Storage bucket
type GCS struct {
	client     *gcs.Client
	bucket     string
	publicBase string
}

var _ interfaces.ObjectStorage = &GCS{}

// NewGCS creates a client with application default credentials. An empty
// publicBase serves objects from storage.googleapis.com.
func NewGCS(ctx context.Context, bucket, publicBase string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}
	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + bucket
	}
	return &GCS{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (g *GCS) Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) error {
	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		safe.Close(ctx, w)
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", g.bucket), goerr.V("path", path))
	}
	return nil
}

func (g *GCS) PublicURL(path string) string {
	return g.publicBase + "/" + path
}

func (g *GCS) Close() error {
	return g.client.Close()
}
