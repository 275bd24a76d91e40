package auth

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// ErrNoPrincipal is returned when an operation requires an acting user but none is attached
var ErrNoPrincipal = goerr.New("no principal in context")

// Principal is the authenticated actor on whose behalf a request is performed
type Principal struct {
	Sub   string     `json:"sub"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  types.Role `json:"role"`
}

// NewPrincipal creates a principal. An unknown role degrades to viewer.
func NewPrincipal(sub, email, name string, role types.Role) *Principal {
	if !role.IsValid() {
		role = types.RoleViewer
	}
	return &Principal{
		Sub:   sub,
		Email: email,
		Name:  name,
		Role:  role,
	}
}

// Validate checks that the principal identifies somebody
func (p *Principal) Validate() error {
	if p == nil {
		return ErrNoPrincipal
	}
	if p.Sub == "" {
		return goerr.New("principal subject is empty")
	}
	if !p.Role.IsValid() {
		return goerr.New("principal role is invalid", goerr.V("role", p.Role))
	}
	return nil
}

// LogValue implements slog.LogValuer. Email is omitted.
func (p *Principal) LogValue() slog.Value {
	if p == nil {
		return slog.StringValue("anonymous")
	}
	return slog.GroupValue(
		slog.String("sub", p.Sub),
		slog.String("role", p.Role.String()),
	)
}

type ctxPrincipalKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, or nil
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxPrincipalKey{}).(*Principal)
	return p
}

// RequirePrincipal returns the principal attached to ctx or ErrNoPrincipal
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return nil, ErrNoPrincipal
	}
	return p, nil
}
