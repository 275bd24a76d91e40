package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

func TestSchemeRepository(t *testing.T) {
	runAll(t, runSchemeRepositoryTest)
}

func runSchemeRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("Create ignores provided totals", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Scheme().Create(ctx, &model.Scheme{
			Name:      uniq("Q1 Fuel"),
			StartDate: "2024-01-01",
			EndDate:   "2024-03-31",
			Active:    true,
			Totals:    model.SchemeTotals{ClaimsGenerated: 42},
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, created.Totals.IsZero()).True()

		got, err := repo.Scheme().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal(created.Name)
		gt.Value(t, got.EndDate).Equal("2024-03-31")
		gt.Bool(t, got.Active).True()
	})

	t.Run("List includes created schemes", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		s1 := createScheme(t, repo)
		s2 := createScheme(t, repo)

		list, err := repo.Scheme().List(ctx)
		gt.NoError(t, err).Required()

		ids := map[model.SchemeID]bool{}
		for _, s := range list {
			ids[s.ID] = true
		}
		gt.Bool(t, ids[s1.ID]).True()
		gt.Bool(t, ids[s2.ID]).True()
	})

	t.Run("Update leaves totals untouched", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		scheme := createScheme(t, repo)

		_, err := repo.ExpenseClaim().Create(ctx, newClaim(scheme.ID, uniq("user"), 500))
		gt.NoError(t, err).Required()

		upd := scheme.Clone()
		upd.Name = "Renamed"
		upd.Active = false
		upd.Totals = model.SchemeTotals{}
		updated, err := repo.Scheme().Update(ctx, upd)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("Renamed")
		gt.Bool(t, updated.Active).False()
		gt.Number(t, updated.Totals.ClaimsGenerated).Equal(1)
	})

	t.Run("Update returns not found for unknown id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Scheme().Update(context.Background(), &model.Scheme{ID: model.NewSchemeID(), Name: "x", StartDate: "2024-01-01"})
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("Delete refuses schemes with claims", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		scheme := createScheme(t, repo)

		c, err := repo.ExpenseClaim().Create(ctx, newClaim(scheme.ID, uniq("user"), 500))
		gt.NoError(t, err).Required()

		err = repo.Scheme().Delete(ctx, scheme.ID)
		gt.Error(t, err).Is(interfaces.ErrSchemeHasClaim)

		gt.NoError(t, repo.ExpenseClaim().Delete(ctx, c.ID)).Required()
		gt.NoError(t, repo.Scheme().Delete(ctx, scheme.ID)).Required()

		_, err = repo.Scheme().Get(ctx, scheme.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("RecomputeTotals matches the claims", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		scheme := createScheme(t, repo)

		amounts := []model.Money{1000, 2000, 3000}
		var ids []model.ExpenseClaimID
		for _, amount := range amounts {
			c, err := repo.ExpenseClaim().Create(ctx, newClaim(scheme.ID, uniq("user"), amount))
			gt.NoError(t, err).Required()
			ids = append(ids, c.ID)
		}
		_, err := repo.ExpenseClaim().TransitionStatus(ctx, ids[0], types.ClaimStatusApproved, "mgr")
		gt.NoError(t, err).Required()
		_, err = repo.ExpenseClaim().TransitionStatus(ctx, ids[2], types.ClaimStatusRejected, "mgr")
		gt.NoError(t, err).Required()

		recomputed, err := repo.Scheme().RecomputeTotals(ctx, scheme.ID)
		gt.NoError(t, err).Required()
		want := model.SchemeTotals{ClaimsGenerated: 3, ClaimsApproved: 1, TotalPayout: 1000}
		gt.Value(t, recomputed.Totals).Equal(want)

		stored, err := repo.Scheme().Get(ctx, scheme.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Totals).Equal(want)
	})

	t.Run("RecomputeTotals returns not found for unknown scheme", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Scheme().RecomputeTotals(context.Background(), model.NewSchemeID())
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}
