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

func TestSchemeCreate(t *testing.T) {
	uc, _ := newUseCases(t)

	t.Run("sales rep cannot manage schemes", func(t *testing.T) {
		_, err := uc.Scheme.Create(ctxAs(types.RoleSalesRep), usecase.SchemeInput{Name: "X", StartDate: "2026-01-01"})
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := uc.Scheme.Create(ctxAs(types.RoleAdmin), usecase.SchemeInput{Name: "X", StartDate: "2026-02-01", EndDate: "2026-01-01"})
		var verrs form.ValidationErrors
		gt.Bool(t, errors.As(err, &verrs)).True()
		gt.Map(t, map[string]string(verrs)).HasKey("end_date")
	})

	res, err := uc.Scheme.Create(ctxAs(types.RoleAdmin), usecase.SchemeInput{Name: "  Q3 Push ", StartDate: "2026-07-01", Active: true})
	gt.NoError(t, err).Required()
	gt.String(t, res.Data.Name).Equal("Q3 Push")
	gt.Value(t, res.Data.Totals).Equal(model.SchemeTotals{})
	gt.String(t, res.Notification.Message).Equal("Scheme created")
}

func TestSchemeUpdateKeepsTotals(t *testing.T) {
	uc, _ := newUseCases(t)
	scheme := createScheme(t, uc, "Summer push", true)
	fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{SchemeID: scheme.ID, Type: "fuel", Date: "2026-06-01", Amount: 500})

	res, err := uc.Scheme.Update(ctxAs(types.RoleManager), scheme.ID, usecase.SchemeInput{
		Name:      "Summer push (extended)",
		StartDate: "2026-01-01",
		EndDate:   "2027-01-31",
		Active:    true,
	})
	gt.NoError(t, err).Required()
	gt.String(t, res.Data.Name).Equal("Summer push (extended)")
	gt.Number(t, res.Data.Totals.ClaimsGenerated).Equal(1)

	_, err = uc.Scheme.Update(ctxAs(types.RoleManager), "missing", usecase.SchemeInput{Name: "X", StartDate: "2026-01-01"})
	gt.Error(t, err).Is(usecase.ErrSchemeNotFound)
}

func TestSchemeDelete(t *testing.T) {
	uc, _ := newUseCases(t)
	manager := ctxAs(types.RoleManager)
	used := createScheme(t, uc, "Used", true)
	unused := createScheme(t, uc, "Unused", true)
	fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{SchemeID: used.ID, Type: "fuel", Date: "2026-06-01", Amount: 500})

	_, err := uc.Scheme.Delete(manager, used.ID)
	gt.Error(t, err).Is(usecase.ErrSchemeInUse)
	gt.String(t, usecase.FailureNotification(err).Message).Equal(usecase.ErrSchemeInUse.Error())

	_, err = uc.Scheme.Delete(manager, unused.ID)
	gt.NoError(t, err).Required()

	_, err = uc.Scheme.Get(manager, unused.ID)
	gt.Error(t, err).Is(usecase.ErrSchemeNotFound)

	list, err := uc.Scheme.List(manager)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(1)
}

func TestSchemeRecomputeAndTable(t *testing.T) {
	uc, _ := newUseCases(t)
	manager := ctxAs(types.RoleManager)
	scheme := createScheme(t, uc, "Summer push", true)
	claim := fileClaim(t, uc, types.RoleSalesRep, usecase.ExpenseClaimInput{SchemeID: scheme.ID, Type: "fuel", Date: "2026-06-01", Amount: 1999})
	_, err := uc.ExpenseClaim.ChangeStatus(manager, claim.ID, types.ClaimStatusApproved)
	gt.NoError(t, err).Required()

	res, err := uc.Scheme.Recompute(manager, scheme.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, res.Data.Totals).Equal(model.SchemeTotals{ClaimsGenerated: 1, ClaimsApproved: 1, TotalPayout: 1999})

	_, err = uc.Scheme.Recompute(manager, "missing")
	gt.Error(t, err).Is(usecase.ErrSchemeNotFound)

	view, err := uc.Scheme.Table(manager, usecase.TableQuery{})
	gt.NoError(t, err).Required()
	gt.Array(t, view.Rows).Length(1).Required()
	gt.String(t, cell(view.Rows[0], "total_payout")).Equal("19.99")
	gt.String(t, cell(view.Rows[0], "claims_approved")).Equal("1")
	gt.String(t, cell(view.Rows[0], "active")).Equal("Active")
}
