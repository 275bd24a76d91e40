package graphql

import (
	"context"
	"errors"
	"net/http"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/salesdesk-io/salesdesk/pkg/utils/errutil"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error codes set in the "code" extension of a GraphQL error
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeConflict        = "CONFLICT"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeUnavailable     = "UNAVAILABLE"
	CodeInternal        = "INTERNAL"
)

// complexityLimit bounds the number of fields a single operation may select
const complexityLimit = 1000

var (
	badUserInput = []error{
		usecase.ErrInvalidInput,
		model.ErrInvalidMoney,
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

// errorCode maps a use case error to its GraphQL error code
func errorCode(err error) string {
	var verrs form.ValidationErrors
	switch {
	case errors.As(err, &verrs), isAny(err, badUserInput):
		return CodeBadUserInput
	case isAny(err, conflict):
		return CodeConflict
	case isAny(err, notFound):
		return CodeNotFound
	case errors.Is(err, usecase.ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, usecase.ErrPermissionDenied):
		return CodeForbidden
	case errors.Is(err, usecase.ErrStorageNotConfigured):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// PresentError renders a resolver error with the same notification the JSON
// API shows. Field errors of a validation failure go to the "fields"
// extension. Internal errors are logged and reported; client errors are
// logged at warn level only.
func PresentError(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)
	cause := gqlErr.Unwrap()
	if cause == nil {
		// parse and validation errors of the query itself
		return gqlErr
	}

	code := errorCode(cause)
	notification := usecase.FailureNotification(cause)
	gqlErr.Message = notification.Message
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]any{}
	}
	gqlErr.Extensions["code"] = code
	gqlErr.Extensions["notification"] = notification

	var verrs form.ValidationErrors
	if errors.As(cause, &verrs) {
		gqlErr.Extensions["fields"] = verrs
	}

	if code == CodeInternal {
		_ = errutil.Handle(ctx, goerr.Wrap(cause, "GraphQL error", goerr.V("path", gqlErr.Path.String())), "GraphQL error occurred")
	} else {
		logging.From(ctx).Warn("GraphQL request rejected", "code", code, "path", gqlErr.Path.String(), "error", cause.Error())
	}
	return gqlErr
}

// RecoverPanic turns a resolver panic into an error with a stack trace
func RecoverPanic(ctx context.Context, panicValue any) error {
	var panicErr error
	switch e := panicValue.(type) {
	case error:
		panicErr = e
	case string:
		panicErr = goerr.New(e)
	default:
		panicErr = goerr.New("panic occurred", goerr.V("panic", panicValue))
	}
	return goerr.Wrap(panicErr, "GraphQL panic")
}

// NewHandler serves the schema over HTTP. Every request gets its own data
// loaders.
func NewHandler(resolver *Resolver) http.Handler {
	srv := handler.New(NewExecutableSchema(resolver))
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.SetQueryCache(lru.New[*ast.QueryDocument](1000))
	srv.Use(extension.Introspection{})
	srv.Use(extension.FixedComplexityLimit(complexityLimit))
	srv.SetErrorPresenter(PresentError)
	srv.SetRecoverFunc(RecoverPanic)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loaders := NewDataLoaders(resolver.uc)
		ctx := WithDataLoaders(r.Context(), loaders)
		srv.ServeHTTP(w, r.WithContext(ctx))
	})
}
