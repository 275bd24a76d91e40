package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/salesdesk-io/salesdesk/pkg/utils/errutil"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

// StateNotFound marks responses for resources that do not exist so clients
// can render a not-found page instead of an error toast
const StateNotFound = "not_found"

// maxJSONBytes bounds JSON request bodies
const maxJSONBytes = 1 << 20

// envelope is the body of every API response
type envelope struct {
	Data         any                   `json:"data,omitempty"`
	Notification *usecase.Notification `json:"notification,omitempty"`
	Errors       form.ValidationErrors `json:"errors,omitempty"`
	State        string                `json:"state,omitempty"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

func writeData(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	writeJSON(r.Context(), w, statusCode, envelope{Data: data})
}

func writeResult[T any](w http.ResponseWriter, r *http.Request, statusCode int, res *usecase.Result[T]) {
	writeJSON(r.Context(), w, statusCode, envelope{Data: res.Data, Notification: &res.Notification})
}

var (
	badRequest = []error{
		usecase.ErrInvalidInput,
		model.ErrUnknownUploadContext,
	}
	conflict = []error{
		usecase.ErrDuplicateClaim,
		usecase.ErrInvalidTransition,
		usecase.ErrSchemeInUse,
		usecase.ErrRecordInUse,
	}
	notFound = []error{
		usecase.ErrRecordNotFound,
		usecase.ErrClaimNotFound,
		usecase.ErrSchemeNotFound,
		usecase.ErrTargetNotFound,
		model.ErrUnknownEntity,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorStatus maps a use case error to its HTTP status
func errorStatus(err error) int {
	var verrs form.ValidationErrors
	switch {
	case errors.As(err, &verrs), isAny(err, badRequest):
		return http.StatusBadRequest
	case isAny(err, conflict):
		return http.StatusConflict
	case isAny(err, notFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the response envelope. Server errors are logged
// and reported; client errors are logged at warn level only.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := errorStatus(err)

	body := envelope{}
	notification := usecase.FailureNotification(err)
	body.Notification = &notification

	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		body.Errors = verrs
	}
	if status == http.StatusNotFound {
		body.State = StateNotFound
	}

	if status >= http.StatusInternalServerError {
		errutil.Log(ctx, err, status)
	} else {
		logging.From(ctx).Warn("request rejected", "status", status, "error", err.Error())
	}
	writeJSON(ctx, w, status, body)
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes))
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "invalid JSON body", goerr.V("reason", err.Error()))
	}
	return nil
}
