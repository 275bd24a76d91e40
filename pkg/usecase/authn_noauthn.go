package usecase

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	principal *auth.Principal
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info
func NewNoAuthnUseCase(sub, email, name string, role types.Role) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		principal: auth.NewPrincipal(sub, email, name, role),
	}
}

// Authenticate ignores the token and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	p := *uc.principal
	return &p, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
