package auth_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

func TestNewPrincipal(t *testing.T) {
	t.Run("keeps valid role", func(t *testing.T) {
		p := auth.NewPrincipal("u1", "u1@example.com", "User One", types.RoleManager)
		gt.Value(t, p.Role).Equal(types.RoleManager)
		gt.NoError(t, p.Validate())
	})

	t.Run("unknown role degrades to viewer", func(t *testing.T) {
		p := auth.NewPrincipal("u1", "", "", types.Role("root"))
		gt.Value(t, p.Role).Equal(types.RoleViewer)
	})

	t.Run("empty subject is invalid", func(t *testing.T) {
		p := auth.NewPrincipal("", "", "", types.RoleAdmin)
		gt.Value(t, p.Validate()).NotNil()
	})
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	gt.Value(t, auth.PrincipalFromContext(ctx)).Nil()
	_, err := auth.RequirePrincipal(ctx)
	gt.Error(t, err).Is(auth.ErrNoPrincipal)

	p := auth.NewPrincipal("u1", "u1@example.com", "User One", types.RoleSalesRep)
	ctx = auth.ContextWithPrincipal(ctx, p)

	got, err := auth.RequirePrincipal(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Sub).Equal("u1")
	gt.Value(t, got.Role).Equal(types.RoleSalesRep)
}
