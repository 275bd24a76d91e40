package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/service/storage"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	StorageNone   = ""
	StorageMemory = "memory"
	StorageGCS    = "gcs"
	StorageS3     = "s3"
)

// Storage holds CLI flags for the object storage receiving uploads
type Storage struct {
	backend    string
	bucket     string
	region     string
	endpoint   string
	publicBase string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Object storage for uploads (gcs, s3 or memory). Uploads are disabled when empty.",
			Category:    "Storage",
			Sources:     cli.EnvVars("SALESDESK_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Bucket name (required for gcs and s3)",
			Category:    "Storage",
			Sources:     cli.EnvVars("SALESDESK_STORAGE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-region",
			Usage:       "S3 region",
			Category:    "Storage",
			Sources:     cli.EnvVars("SALESDESK_STORAGE_REGION"),
			Destination: &x.region,
		},
		&cli.StringFlag{
			Name:        "storage-endpoint",
			Usage:       "S3 compatible endpoint URL (e.g. MinIO)",
			Category:    "Storage",
			Sources:     cli.EnvVars("SALESDESK_STORAGE_ENDPOINT"),
			Destination: &x.endpoint,
		},
		&cli.StringFlag{
			Name:        "storage-public-base-url",
			Usage:       "Base URL under which uploaded objects are served",
			Category:    "Storage",
			Sources:     cli.EnvVars("SALESDESK_STORAGE_PUBLIC_BASE_URL"),
			Destination: &x.publicBase,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("bucket", x.bucket),
		slog.String("region", x.region),
		slog.String("endpoint", x.endpoint),
		slog.String("public_base_url", x.publicBase),
	)
}

// Configure creates the object storage. It returns nil storage when no
// backend is set. The returned function releases the client.
func (x *Storage) Configure(ctx context.Context) (interfaces.ObjectStorage, func(), error) {
	noop := func() {}

	switch x.backend {
	case StorageNone:
		logging.Default().Info("Object storage not configured, uploads are disabled")
		return nil, noop, nil

	case StorageMemory:
		logging.Default().Warn("Using in-memory object storage (development mode)")
		return storage.NewMemory(x.publicBase), noop, nil

	case StorageGCS:
		if x.bucket == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "storage-bucket is required for gcs")
		}
		gcs, err := storage.NewGCS(ctx, x.bucket, x.publicBase)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize GCS storage")
		}
		return gcs, func() {
			if err := gcs.Close(); err != nil {
				logging.Default().Error("failed to close GCS client", "error", err.Error())
			}
		}, nil

	case StorageS3:
		if x.bucket == "" {
			return nil, nil, goerr.Wrap(ErrInvalidConfig, "storage-bucket is required for s3")
		}
		s3, err := storage.NewS3(ctx, x.bucket, x.region, x.endpoint, x.publicBase)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize S3 storage")
		}
		return s3, noop, nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid storage backend", goerr.V("backend", x.backend))
	}
}
