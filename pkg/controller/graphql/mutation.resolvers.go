package graphql

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

// deleted is the outcome of a delete mutation of any kind
type deleted struct {
	ID           string
	Notification usecase.Notification
}

func newDeleted[T ~string](res *usecase.Result[T]) *deleted {
	return &deleted{ID: string(res.Data), Notification: res.Notification}
}

func (r *Resolver) mutationFields() map[string]fieldFunc {
	return map[string]fieldFunc{
		"createRecord":             r.createRecord,
		"updateRecord":             r.updateRecord,
		"deleteRecord":             r.deleteRecord,
		"createExpenseClaim":       r.createExpenseClaim,
		"changeExpenseClaimStatus": r.changeExpenseClaimStatus,
		"deleteExpenseClaim":       r.deleteExpenseClaim,
		"createScheme":             r.createScheme,
		"updateScheme":             r.updateScheme,
		"deleteScheme":             r.deleteScheme,
		"recomputeScheme":          r.recomputeScheme,
		"createTarget":             r.createTarget,
		"updateTarget":             r.updateTarget,
		"deleteTarget":             r.deleteTarget,
	}
}

func (r *Resolver) createRecord(ctx context.Context, _ any, args map[string]any) (any, error) {
	entity, err := stringArg(args, "entity")
	if err != nil {
		return nil, err
	}
	values, err := valuesArg(args, "values")
	if err != nil {
		return nil, err
	}
	return r.uc.Record.Create(ctx, types.EntityName(entity), values)
}

func (r *Resolver) updateRecord(ctx context.Context, _ any, args map[string]any) (any, error) {
	entity, err := stringArg(args, "entity")
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	values, err := valuesArg(args, "values")
	if err != nil {
		return nil, err
	}
	return r.uc.Record.Update(ctx, types.EntityName(entity), model.RecordID(id), values)
}

func (r *Resolver) deleteRecord(ctx context.Context, _ any, args map[string]any) (any, error) {
	entity, err := stringArg(args, "entity")
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := r.uc.Record.Delete(ctx, types.EntityName(entity), model.RecordID(id))
	if err != nil {
		return nil, err
	}
	return newDeleted(res), nil
}

func (r *Resolver) createExpenseClaim(ctx context.Context, _ any, args map[string]any) (any, error) {
	in, err := claimInput(args)
	if err != nil {
		return nil, err
	}
	return r.uc.ExpenseClaim.Create(ctx, in)
}

func (r *Resolver) changeExpenseClaimStatus(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	status, err := stringArg(args, "status")
	if err != nil {
		return nil, err
	}
	return r.uc.ExpenseClaim.ChangeStatus(ctx, model.ExpenseClaimID(id), types.ClaimStatus(status))
}

func (r *Resolver) deleteExpenseClaim(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := r.uc.ExpenseClaim.Delete(ctx, model.ExpenseClaimID(id))
	if err != nil {
		return nil, err
	}
	return newDeleted(res), nil
}

func (r *Resolver) createScheme(ctx context.Context, _ any, args map[string]any) (any, error) {
	in, err := schemeInput(args)
	if err != nil {
		return nil, err
	}
	return r.uc.Scheme.Create(ctx, in)
}

func (r *Resolver) updateScheme(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	in, err := schemeInput(args)
	if err != nil {
		return nil, err
	}
	return r.uc.Scheme.Update(ctx, model.SchemeID(id), in)
}

func (r *Resolver) deleteScheme(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := r.uc.Scheme.Delete(ctx, model.SchemeID(id))
	if err != nil {
		return nil, err
	}
	return newDeleted(res), nil
}

func (r *Resolver) recomputeScheme(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	return r.uc.Scheme.Recompute(ctx, model.SchemeID(id))
}

func (r *Resolver) createTarget(ctx context.Context, _ any, args map[string]any) (any, error) {
	in, err := targetInput(args)
	if err != nil {
		return nil, err
	}
	return r.uc.Target.Create(ctx, in)
}

func (r *Resolver) updateTarget(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	in, err := targetInput(args)
	if err != nil {
		return nil, err
	}
	return r.uc.Target.Update(ctx, model.TargetID(id), in)
}

func (r *Resolver) deleteTarget(ctx context.Context, _ any, args map[string]any) (any, error) {
	id, err := stringArg(args, "id")
	if err != nil {
		return nil, err
	}
	res, err := r.uc.Target.Delete(ctx, model.TargetID(id))
	if err != nil {
		return nil, err
	}
	return newDeleted(res), nil
}
