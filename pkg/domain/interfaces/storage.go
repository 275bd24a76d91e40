package interfaces

import (
	"context"
	"io"
)

// ObjectStorage stores uploaded files and exposes them by public URL
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader, size int64) error
	PublicURL(path string) string
}
