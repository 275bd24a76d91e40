package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/utils/errutil"
)

func TestHandleReturnsSameError(t *testing.T) {
	base := errors.New("boom")
	err := errutil.Handle(context.Background(), base, "failed")
	gt.Error(t, err).Is(base)

	gt.NoError(t, errutil.Handle(context.Background(), nil, "ignored"))
}

func TestHandleHTTPWritesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	err := goerr.New("record missing", goerr.V("id", "r-1"))

	errutil.HandleHTTP(context.Background(), w, err, http.StatusNotFound)

	gt.Value(t, w.Code).Equal(http.StatusNotFound)
	gt.String(t, w.Body.String()).Contains("record missing")
}

func TestHandleHTTPNilIsNoop(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, nil, http.StatusInternalServerError)
	gt.Value(t, w.Code).Equal(http.StatusOK)
}

type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (x *recordingTransport) Flush(time.Duration) bool                { return true }
func (x *recordingTransport) FlushWithContext(context.Context) bool { return true }
func (x *recordingTransport) Configure(sentry.ClientOptions)        {}
func (x *recordingTransport) Close()                                {}
func (x *recordingTransport) SendEvent(event *sentry.Event) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.events = append(x.events, event)
}

func newSentryContext(t *testing.T) (context.Context, *recordingTransport) {
	t.Helper()
	transport := &recordingTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{Transport: transport})
	gt.NoError(t, err).Required()
	hub := sentry.NewHub(client, sentry.NewScope())
	return sentry.SetHubOnContext(context.Background(), hub), transport
}

func TestHandleReportsGoerrValues(t *testing.T) {
	ctx, transport := newSentryContext(t)

	err := goerr.New("claim write failed", goerr.V("claim_id", "c-1"), goerr.V("amount", 1500))
	errutil.Handle(ctx, err, "failed")

	gt.Array(t, transport.events).Length(1).Required()
	got := transport.events[0].Contexts[errutil.SentryContextKey]
	gt.Value(t, got["claim_id"]).Equal(any("c-1"))
	gt.Value(t, got["amount"]).Equal(any(1500))
}

func TestLogReportsOnlyServerErrors(t *testing.T) {
	ctx, transport := newSentryContext(t)

	errutil.Log(ctx, errors.New("not found"), http.StatusNotFound)
	gt.Array(t, transport.events).Length(0)

	errutil.Log(ctx, errors.New("backend down"), http.StatusBadGateway)
	gt.Array(t, transport.events).Length(1).Required()
	_, ok := transport.events[0].Contexts[errutil.SentryContextKey]
	gt.Bool(t, ok).False()
}
