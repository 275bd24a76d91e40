package graphql

import (
	"context"
	"errors"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/auth"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func (r *Resolver) queryFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"me":            r.me,
		"navigation":    r.navigation,
		"dashboard":     r.dashboard,
		"entities":      r.entities,
		"records":       r.records,
		"record":        r.record,
		"schemes":       r.schemes,
		"scheme":        r.scheme,
		"expenseClaims": r.expenseClaims,
		"expenseClaim":  r.expenseClaim,
		"targets":       r.targets,
		"target":        r.target,
	}
}

// nilIfNotFound turns a not-found error of a single-object query into a null
// result
func nilIfNotFound[T any](v T, err error, notFound error) (any, error) {
	if err != nil {
		if errors.Is(err, notFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (r *Resolver) me(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return auth.PrincipalFromContext(ctx), nil
}

func (r *Resolver) navigation(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return r.uc.Navigation.Menu(ctx)
}

func (r *Resolver) dashboard(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return r.uc.Dashboard.StatCards(ctx)
}

func (r *Resolver) entities(_ context.Context, _ any, _ map[string]any) (any, error) {
	return r.uc.Record.Schemas(), nil
}

func (r *Resolver) records(ctx context.Context, _ any, args map[string]any) (any, error) {
	entity, err := stringArg(args, "entity")
	if err != nil {
		return nil, err
	}
	filters, err := filtersArg(args, "filters")
	if err != nil {
		return nil, err
	}
	return r.uc.Record.List(ctx, types.EntityName(entity), filters)
}

func (r *Resolver) record(ctx context.Context, _ any, args map[string]any) (any, error) {
	entity, err := stringArg(args, "entity")
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	rec, err := r.uc.Record.Get(ctx, types.EntityName(entity), model.RecordID(id))
	return nilIfNotFound(rec, err, usecase.ErrRecordNotFound)
}

func (r *Resolver) schemes(ctx context.Context, _ any, _ map[string]any) (any, error) {
	return r.uc.Scheme.List(ctx)
}

func (r *Resolver) scheme(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	s, err := r.uc.Scheme.Get(ctx, model.SchemeID(id))
	return nilIfNotFound(s, err, usecase.ErrSchemeNotFound)
}

func (r *Resolver) expenseClaims(ctx context.Context, _ any, args map[string]any) (any, error) {
	filters, err := filtersArg(args, "filters")
	if err != nil {
		return nil, err
	}
	return r.uc.ExpenseClaim.List(ctx, filters)
}

func (r *Resolver) expenseClaim(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	c, err := r.uc.ExpenseClaim.Get(ctx, model.ExpenseClaimID(id))
	return nilIfNotFound(c, err, usecase.ErrClaimNotFound)
}

func (r *Resolver) targets(ctx context.Context, _ any, args map[string]any) (any, error) {
	filters, err := filtersArg(args, "filters")
	if err != nil {
		return nil, err
	}
	return r.uc.Target.List(ctx, filters)
}

func (r *Resolver) target(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	t, err := r.uc.Target.Get(ctx, model.TargetID(id))
	return nilIfNotFound(t, err, usecase.ErrTargetNotFound)
}
