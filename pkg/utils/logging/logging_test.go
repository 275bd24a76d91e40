package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	prev := logging.Default()
	logging.SetDefault(logger)
	t.Cleanup(func() { logging.SetDefault(prev) })

	logging.From(context.Background()).Info("hello")
	gt.String(t, buf.String()).Contains("hello")
}

func TestWithOverridesDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Info("scoped")
	gt.String(t, buf.String()).Contains("scoped")
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	prev := logging.Default()
	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).Equal(prev)
}
