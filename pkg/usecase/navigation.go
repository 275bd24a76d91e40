package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
)

type NavigationUseCase struct {
	items []model.NavItem
}

func NewNavigationUseCase(items []model.NavItem) *NavigationUseCase {
	return &NavigationUseCase{items: items}
}

// Menu returns the navigation visible to the principal's role
func (uc *NavigationUseCase) Menu(ctx context.Context) ([]model.NavItem, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "principal is required")
	}
	return model.FilterNavigation(uc.items, p.Role), nil
}
