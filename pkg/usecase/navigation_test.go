package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func labels(items []model.NavItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestNavigationMenu(t *testing.T) {
	uc, _ := newUseCases(t)

	testCases := []struct {
		role  types.Role
		top   []string
		sales []string
	}{
		{role: types.RoleAdmin, top: []string{"Dashboard", "Master Data", "Sales", "Reports", "Settings"}, sales: []string{"Targets", "Schemes", "Expense Claims"}},
		{role: types.RoleManager, top: []string{"Dashboard", "Master Data", "Sales", "Reports"}, sales: []string{"Targets", "Schemes", "Expense Claims"}},
		{role: types.RoleSalesRep, top: []string{"Dashboard", "Sales"}, sales: []string{"Targets", "Expense Claims"}},
		{role: types.RoleViewer, top: []string{"Dashboard", "Sales"}, sales: []string{"Targets"}},
	}

	for _, tc := range testCases {
		t.Run(tc.role.String(), func(t *testing.T) {
			menu, err := uc.Navigation.Menu(ctxAs(tc.role))
			gt.NoError(t, err).Required()
			gt.Value(t, labels(menu)).Equal(tc.top)
			for _, item := range menu {
				if item.Label == "Sales" {
					gt.Value(t, labels(item.Children)).Equal(tc.sales)
				}
			}
		})
	}

	_, err := uc.Navigation.Menu(context.Background())
	gt.Error(t, err).Is(usecase.ErrUnauthenticated)
}

func TestNavigationCustomItems(t *testing.T) {
	uc, _ := newUseCases(t, usecase.WithNavigation([]model.NavItem{
		{Path: "/", Label: "Home"},
		{Path: "/admin", Label: "Admin", Roles: []types.Role{types.RoleAdmin}},
	}))

	menu, err := uc.Navigation.Menu(ctxAs(types.RoleManager))
	gt.NoError(t, err).Required()
	gt.Value(t, labels(menu)).Equal([]string{"Home"})
}
