package usecase_test

import (
	"context"
	"testing"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/repository/memory"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func ctxAs(role types.Role) context.Context {
	p := auth.NewPrincipal("user-"+role.String(), role.String()+"@example.com", "Test "+role.String(), role)
	return auth.ContextWithPrincipal(context.Background(), p)
}

func newUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	return usecase.New(repo, opts...), repo
}

func control(controls []form.Control, key string) (form.Control, bool) {
	for _, c := range controls {
		if c.Key == key {
			return c, true
		}
	}
	return form.Control{}, false
}

func cell(row table.RowView, key string) string {
	for _, c := range row.Cells {
		if c.Key == key {
			return c.Text
		}
	}
	return ""
}
