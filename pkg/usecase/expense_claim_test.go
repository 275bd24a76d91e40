package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func createScheme(t *testing.T, uc *usecase.UseCases, name string, active bool) *model.Scheme {
	t.Helper()
	res, err := uc.Scheme.Create(ctxAs(types.RoleManager), usecase.SchemeInput{
		Name:      name,
		StartDate: "2026-01-01",
		EndDate:   "2026-12-31",
		Active:    active,
	})
	gt.NoError(t, err).Required()
	return res.Data
}

func fileClaim(t *testing.T, uc *usecase.UseCases, role types.Role, in usecase.ExpenseClaimInput) *model.ExpenseClaim {
	t.Helper()
	res, err := uc.ExpenseClaim.Create(ctxAs(role), in)
	gt.NoError(t, err).Required()
	return res.Data
}

func TestExpenseClaimCreate(t *testing.T) {
	uc, _ := newUseCases(t)
	scheme := createScheme(t, uc, "Summer push", true)
	ctx := ctxAs(types.RoleSalesRep)

	res, err := uc.ExpenseClaim.Create(ctx, usecase.ExpenseClaimInput{
		SchemeID: scheme.ID,
		Type:     "Fuel",
		Date:     "2026-06-01",
		Amount:   model.Money(1250),
	})
	gt.NoError(t, err).Required()
	gt.String(t, res.Notification.Message).Equal("Expense claim submitted")
	gt.Value(t, res.Data.Status).Equal(types.ClaimStatusPending)
	gt.String(t, res.Data.UserID).Equal("user-sales_rep")

	totals, err := uc.ExpenseClaim.SchemeTotals(ctx, scheme.ID)
	gt.NoError(t, err).Required()
	gt.Number(t, totals.Stored.ClaimsGenerated).Equal(1)
	gt.Bool(t, totals.Consistent).True()

	t.Run("same key is a duplicate", func(t *testing.T) {
		_, err := uc.ExpenseClaim.Create(ctx, usecase.ExpenseClaimInput{
			SchemeID: scheme.ID,
			Type:     " Fuel ",
			Date:     "2026-06-01",
			Amount:   model.Money(1250),
		})
		gt.Error(t, err).Is(usecase.ErrDuplicateClaim)
		gt.String(t, usecase.FailureNotification(err).Message).Equal(usecase.ErrDuplicateClaim.Error())
	})

	t.Run("type differing only in case is accepted", func(t *testing.T) {
		res, err := uc.ExpenseClaim.Create(ctx, usecase.ExpenseClaimInput{
			SchemeID: scheme.ID,
			Type:     "fuel",
			Date:     "2026-06-01",
			Amount:   model.Money(1250),
		})
		gt.NoError(t, err).Required()
		gt.String(t, res.Data.Type).Equal("fuel")
	})

	t.Run("different amount is accepted", func(t *testing.T) {
		_, err := uc.ExpenseClaim.Create(ctx, usecase.ExpenseClaimInput{
			SchemeID: scheme.ID,
			Type:     "fuel",
			Date:     "2026-06-01",
			Amount:   model.Money(1300),
		})
		gt.NoError(t, err)
	})
}

func TestExpenseClaimCreateRejected(t *testing.T) {
	uc, _ := newUseCases(t)
	active := createScheme(t, uc, "Active", true)
	inactive := createScheme(t, uc, "Closed", false)

	testCases := []struct {
		name  string
		role  types.Role
		input usecase.ExpenseClaimInput
		field string
		err   error
	}{
		{
			name:  "missing amount",
			role:  types.RoleSalesRep,
			input: usecase.ExpenseClaimInput{SchemeID: active.ID, Type: "fuel", Date: "2026-06-01"},
			field: "amount",
		},
		{
			name:  "bad date",
			role:  types.RoleSalesRep,
			input: usecase.ExpenseClaimInput{SchemeID: active.ID, Type: "fuel", Date: "06/01/2026", Amount: 100},
			field: "date",
		},
		{
			name:  "unknown scheme",
			role:  types.RoleSalesRep,
			input: usecase.ExpenseClaimInput{SchemeID: "missing", Type: "fuel", Date: "2026-06-01", Amount: 100},
			field: "scheme_id",
		},
		{
			name:  "inactive scheme",
			role:  types.RoleSalesRep,
			input: usecase.ExpenseClaimInput{SchemeID: inactive.ID, Type: "fuel", Date: "2026-06-01", Amount: 100},
			field: "scheme_id",
		},
		{
			name:  "sales rep filing for someone else",
			role:  types.RoleSalesRep,
			input: usecase.ExpenseClaimInput{SchemeID: active.ID, UserID: "other", Type: "fuel", Date: "2026-06-01", Amount: 100},
			err:   usecase.ErrPermissionDenied,
		},
		{
			name:  "viewer",
			role:  types.RoleViewer,
			input: usecase.ExpenseClaimInput{SchemeID: active.ID, Type: "fuel", Date: "2026-06-01", Amount: 100},
			err:   usecase.ErrPermissionDenied,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ExpenseClaim.Create(ctxAs(tc.role), tc.input)
			gt.Value(t, err).NotNil()
			if tc.err != nil {
				gt.Error(t, err).Is(tc.err)
				return
			}
			var verrs form.ValidationErrors
			gt.Bool(t, errors.As(err, &verrs)).True()
			gt.Map(t, map[string]string(verrs)).HasKey(tc.field)
		})
	}
}

func TestExpenseClaimChangeStatus(t *testing.T) {
	uc, _ := newUseCases(t)
	scheme := createScheme(t, uc, "Summer push", true)
	claim := fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{
		SchemeID: scheme.ID,
		Type:     "hotel",
		Date:     "2026-06-02",
		Amount:   model.Money(8000),
	})
	manager := ctxAs(types.RoleManager)

	t.Run("sales rep cannot review", func(t *testing.T) {
		_, err := uc.ExpenseClaim.ChangeStatus(ctxAs(types.RoleSalesRep), claim.ID, types.ClaimStatusApproved)
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})

	res, err := uc.ExpenseClaim.ChangeStatus(manager, claim.ID, types.ClaimStatusApproved)
	gt.NoError(t, err).Required()
	gt.Value(t, res.Data.Status).Equal(types.ClaimStatusApproved)
	gt.String(t, res.Notification.Message).Equal("Expense claim approved")

	totals, err := uc.ExpenseClaim.SchemeTotals(manager, scheme.ID)
	gt.NoError(t, err).Required()
	gt.Number(t, totals.Stored.ClaimsApproved).Equal(1)
	gt.Value(t, totals.Stored.TotalPayout).Equal(model.Money(8000))
	gt.Bool(t, totals.Consistent).True()

	t.Run("approved cannot move to rejected", func(t *testing.T) {
		_, err := uc.ExpenseClaim.ChangeStatus(manager, claim.ID, types.ClaimStatusRejected)
		gt.Error(t, err).Is(usecase.ErrInvalidTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := uc.ExpenseClaim.ChangeStatus(manager, claim.ID, "archived")
		var verrs form.ValidationErrors
		gt.Bool(t, errors.As(err, &verrs)).True()
	})

	t.Run("missing claim", func(t *testing.T) {
		_, err := uc.ExpenseClaim.ChangeStatus(manager, "missing", types.ClaimStatusApproved)
		gt.Error(t, err).Is(usecase.ErrClaimNotFound)
	})

	t.Run("reopen removes the payout", func(t *testing.T) {
		_, err := uc.ExpenseClaim.ChangeStatus(manager, claim.ID, types.ClaimStatusPending)
		gt.NoError(t, err).Required()
		totals, err := uc.ExpenseClaim.SchemeTotals(manager, scheme.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, totals.Stored.ClaimsApproved).Equal(0)
		gt.Value(t, totals.Stored.TotalPayout).Equal(model.Money(0))
		gt.Bool(t, totals.Consistent).True()
	})
}

func TestExpenseClaimListScoping(t *testing.T) {
	uc, _ := newUseCases(t)
	scheme := createScheme(t, uc, "Summer push", true)

	fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{SchemeID: scheme.ID, Type: "fuel", Date: "2026-06-01", Amount: 100})
	other := fileClaim(t, uc, types.RoleManager, usecase.ExpenseClaimInput{SchemeID: scheme.ID, Type: "fuel", Date: "2026-06-01", Amount: 100})

	all, err := uc.ExpenseClaim.List(ctxAs(types.RoleManager), nil)
	gt.NoError(t, err).Required()
	gt.Array(t, all).Length(2)

	own, err := uc.ExpenseClaim.List(ctxAs(types.RoleSalesRep), map[string]string{"user_id": "user-manager"})
	gt.NoError(t, err).Required()
	gt.Array(t, own).Length(1).Required()
	gt.String(t, own[0].UserID).Equal("user-sales_rep")

	_, err = uc.ExpenseClaim.Get(ctxAs(types.RoleSalesRep), other.ID)
	gt.Error(t, err).Is(usecase.ErrClaimNotFound)

	_, err = uc.ExpenseClaim.List(ctxAs(types.RoleManager), map[string]string{"amount": "100"})
	gt.Error(t, err).Is(usecase.ErrInvalidInput)

	view, err := uc.ExpenseClaim.Table(ctxAs(types.RoleSalesRep), usecase.TableQuery{})
	gt.NoError(t, err).Required()
	gt.Array(t, view.Rows).Length(1).Required()
	gt.String(t, cell(view.Rows[0], "amount")).Equal("1.00")
	gt.String(t, cell(view.Rows[0], "status")).Equal("Pending")
}

func TestExpenseClaimDelete(t *testing.T) {
	uc, _ := newUseCases(t)
	scheme := createScheme(t, uc, "Summer push", true)
	rep := ctxAs(types.RoleSalesRep)
	manager := ctxAs(types.RoleManager)

	pending := fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{SchemeID: scheme.ID, Type: "fuel", Date: "2026-06-01", Amount: 100})
	approved := fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{SchemeID: scheme.ID, Type: "meal", Date: "2026-06-01", Amount: 200})
	_, err := uc.ExpenseClaim.ChangeStatus(manager, approved.ID, types.ClaimStatusApproved)
	gt.NoError(t, err).Required()

	_, err = uc.ExpenseClaim.Delete(rep, approved.ID)
	gt.Error(t, err).Is(usecase.ErrPermissionDenied)

	res, err := uc.ExpenseClaim.Delete(rep, pending.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, res.Data).Equal(pending.ID)

	_, err = uc.ExpenseClaim.Delete(manager, approved.ID)
	gt.NoError(t, err).Required()

	totals, err := uc.ExpenseClaim.SchemeTotals(manager, scheme.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, totals.Stored).Equal(model.SchemeTotals{})
	gt.Bool(t, totals.Consistent).True()

	_, err = uc.ExpenseClaim.Delete(manager, approved.ID)
	gt.Error(t, err).Is(usecase.ErrClaimNotFound)
}
