package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

func TestTargetRepository(t *testing.T) {
	runAll(t, runTargetRepositoryTest)
}

func runTargetRepositoryTest(t *testing.T, newRepo repoFactory) {
	newTarget := func(user, period string) *model.Target {
		return &model.Target{
			UserID:      user,
			TerritoryID: "t1",
			Period:      period,
			Lines: []model.TargetLine{
				{ProductID: "p1", Quantity: 10, Amount: 100000, Achieved: 40000},
				{ProductID: "p2", Quantity: 5, Amount: 50000, Achieved: 50000},
			},
		}
	}

	t.Run("Create and Get keep lines", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Target().Create(ctx, newTarget(uniq("user"), "2024-03"))
		gt.NoError(t, err).Required()

		got, err := repo.Target().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Lines).Length(2).Required()
		gt.Value(t, got.Lines[1].ProductID).Equal("p2")

		summary := got.Summary()
		gt.Value(t, summary.TotalAmount).Equal(model.Money(150000))
		gt.Value(t, summary.TotalAchieved).Equal(model.Money(90000))
	})

	t.Run("List filters and orders newest period first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		user := uniq("user")

		for _, p := range []string{"2024-01", "2024-03", "2024-02"} {
			_, err := repo.Target().Create(ctx, newTarget(user, p))
			gt.NoError(t, err).Required()
		}
		_, err := repo.Target().Create(ctx, newTarget(uniq("other"), "2024-03"))
		gt.NoError(t, err).Required()

		list, err := repo.Target().List(ctx, interfaces.WithEqual("user_id", user))
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(3).Required()
		gt.Value(t, list[0].Period).Equal("2024-03")
		gt.Value(t, list[2].Period).Equal("2024-01")

		march, err := repo.Target().List(ctx, interfaces.WithEquals(map[string]string{"user_id": user, "period": "2024-03"}))
		gt.NoError(t, err).Required()
		gt.Array(t, march).Length(1)
	})

	t.Run("Update replaces lines", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Target().Create(ctx, newTarget(uniq("user"), "2024-04"))
		gt.NoError(t, err).Required()

		upd := created.Clone()
		upd.Lines = upd.Lines[:1]
		updated, err := repo.Target().Update(ctx, upd)
		gt.NoError(t, err).Required()
		gt.Array(t, updated.Lines).Length(1)

		got, err := repo.Target().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, got.Lines).Length(1)
	})

	t.Run("Delete removes the target", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Target().Create(ctx, newTarget(uniq("user"), "2024-05"))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Target().Delete(ctx, created.ID)).Required()

		_, err = repo.Target().Get(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		err = repo.Target().Delete(ctx, created.ID)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}
