package safe_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/salesdesk-io/salesdesk/pkg/utils/safe"
)

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("close failed") }

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	safe.Close(ctx, nil)
	gt.Number(t, buf.Len()).Equal(0)

	safe.Close(ctx, failingCloser{})
	gt.String(t, buf.String()).Contains("close failed")
}

func TestCopy(t *testing.T) {
	var dst bytes.Buffer
	n := safe.Copy(context.Background(), &dst, strings.NewReader("receipt"))
	gt.Number(t, n).Equal(7)
	gt.String(t, dst.String()).Equal("receipt")
}
