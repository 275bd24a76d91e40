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

func targetInput(userID, period string, lines ...model.TargetLine) usecase.TargetInput {
	return usecase.TargetInput{
		UserID:      userID,
		TerritoryID: "territory-1",
		Period:      period,
		Lines:       lines,
	}
}

func TestTargetCRUD(t *testing.T) {
	uc, _ := newUseCases(t)
	manager := ctxAs(types.RoleManager)

	res, err := uc.Target.Create(manager, targetInput("rep-1", "2026-06",
		model.TargetLine{ProductID: "p1", Quantity: 10, Amount: 10000, Achieved: 6000},
		model.TargetLine{ProductID: "p2", Quantity: 5, Amount: 10000, Achieved: 4000},
	))
	gt.NoError(t, err).Required()
	gt.Number(t, res.Data.Summary.Lines).Equal(2)
	gt.Value(t, res.Data.Summary.TotalAmount).Equal(model.Money(20000))
	gt.Number(t, res.Data.Summary.Achievement).Equal(50)
	gt.String(t, res.Data.Status).Equal("in_progress")

	id := res.Data.ID
	updated, err := uc.Target.Update(manager, id, targetInput("rep-1", "2026-06",
		model.TargetLine{ProductID: "p1", Quantity: 10, Amount: 10000, Achieved: 10000},
	))
	gt.NoError(t, err).Required()
	gt.String(t, updated.Data.Status).Equal("achieved")
	gt.String(t, updated.Notification.Message).Equal("Target updated")

	got, err := uc.Target.Get(manager, id)
	gt.NoError(t, err).Required()
	gt.Number(t, got.Summary.Lines).Equal(1)

	_, err = uc.Target.Delete(manager, id)
	gt.NoError(t, err).Required()
	_, err = uc.Target.Get(manager, id)
	gt.Error(t, err).Is(usecase.ErrTargetNotFound)
}

func TestTargetValidation(t *testing.T) {
	uc, _ := newUseCases(t)
	manager := ctxAs(types.RoleManager)

	testCases := []struct {
		name  string
		input usecase.TargetInput
		field string
	}{
		{name: "bad period", input: targetInput("rep-1", "2026-13"), field: "period"},
		{name: "missing user", input: targetInput("", "2026-06"), field: "user_id"},
		{
			name: "duplicate product",
			input: targetInput("rep-1", "2026-06",
				model.TargetLine{ProductID: "p1", Amount: 100},
				model.TargetLine{ProductID: "p1", Amount: 200},
			),
			field: "lines",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Target.Create(manager, tc.input)
			var verrs form.ValidationErrors
			gt.Bool(t, errors.As(err, &verrs)).True()
			gt.Map(t, map[string]string(verrs)).HasKey(tc.field)
		})
	}

	_, err := uc.Target.Create(ctxAs(types.RoleSalesRep), targetInput("rep-1", "2026-06"))
	gt.Error(t, err).Is(usecase.ErrPermissionDenied)
}

func TestTargetListAndTable(t *testing.T) {
	uc, _ := newUseCases(t)
	manager := ctxAs(types.RoleManager)

	for _, in := range []usecase.TargetInput{
		targetInput("rep-1", "2026-05", model.TargetLine{ProductID: "p1", Amount: 1000, Achieved: 100}),
		targetInput("rep-1", "2026-06"),
		targetInput("rep-2", "2026-06", model.TargetLine{ProductID: "p1", Amount: 1000, Achieved: 1000}),
	} {
		_, err := uc.Target.Create(manager, in)
		gt.NoError(t, err).Required()
	}

	list, err := uc.Target.List(manager, map[string]string{"period": "2026-06"})
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(2)

	_, err = uc.Target.List(manager, map[string]string{"lines": "1"})
	gt.Error(t, err).Is(usecase.ErrInvalidInput)

	view, err := uc.Target.Table(manager, usecase.TableQuery{
		Filters: map[string]string{"user_id": "rep-1"},
		SortKey: "period",
		SortDir: types.SortAsc,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, view.Rows).Length(2).Required()
	gt.String(t, cell(view.Rows[0], "achievement")).Equal("10.0%")
	gt.String(t, cell(view.Rows[0], "status")).Equal("Behind")
	gt.String(t, cell(view.Rows[1], "status")).Equal("Draft")
	gt.String(t, cell(view.Rows[1], "total_amount")).Equal("0.00")
}
