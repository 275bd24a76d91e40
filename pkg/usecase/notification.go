package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
	"github.com/salesdesk-io/salesdesk/pkg/utils/errutil"
)

// NotificationLevel is the tone of a toast shown after a mutation
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

// Notification is the user-facing outcome of a mutation
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

func success(message string) Notification {
	return Notification{Level: NotifySuccess, Message: message}
}

// userFacing errors are shown to the user with their own message
var userFacing = []error{
	ErrDuplicateClaim,
	ErrInvalidTransition,
	ErrSchemeInUse,
	ErrRecordInUse,
	ErrPermissionDenied,
	ErrUnauthenticated,
	ErrRecordNotFound,
	ErrClaimNotFound,
	ErrSchemeNotFound,
	ErrTargetNotFound,
}

// FailureNotification describes err for the user. Anything that is not a
// validation or user-facing error gets a generic message.
func FailureNotification(err error) Notification {
	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		return Notification{Level: NotifyError, Message: "Please correct the highlighted fields"}
	}
	for _, sentinel := range userFacing {
		if errors.Is(err, sentinel) {
			return Notification{Level: NotifyError, Message: sentinel.Error()}
		}
	}
	return Notification{Level: NotifyError, Message: "Something went wrong, please try again"}
}

// Result is the data written by a mutation together with its notification
type Result[T any] struct {
	Data         T            `json:"data"`
	Notification Notification `json:"notification"`
}

// broadcast drops cached lists of entities. A failure to reach other
// instances is reported but does not fail the mutation that already happened.
func broadcast(ctx context.Context, cache *querycache.Cache, entities ...string) {
	if err := cache.Broadcast(ctx, entities...); err != nil {
		_ = errutil.Handle(ctx, err, "failed to broadcast invalidation")
	}
}

func requirePrincipal(ctx context.Context) (*auth.Principal, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	return p, nil
}

func requireWriter(ctx context.Context) (*auth.Principal, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.Role.CanWrite() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role cannot write", goerr.V(RoleKey, p.Role))
	}
	return p, nil
}

func requireReviewer(ctx context.Context) (*auth.Principal, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.Role.CanReview() {
		return nil, goerr.Wrap(ErrPermissionDenied, "role cannot manage this resource", goerr.V(RoleKey, p.Role))
	}
	return p, nil
}
