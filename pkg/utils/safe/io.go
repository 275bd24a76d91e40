package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

// Close closes closer and logs a failure. A nil closer is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("Failed to close", slog.Any("error", err))
	}
}

// Copy copies src into dst and returns the number of bytes written. A
// failure is logged and the partial count returned.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) int64 {
	n, err := io.Copy(dst, src)
	if err != nil {
		logging.From(ctx).Warn("Failed to copy", slog.Any("error", err), slog.Int64("written", n))
	}
	return n
}
