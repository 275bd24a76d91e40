package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
)

var targetFilters = []string{"user_id", "territory_id", "period"}

type TargetUseCase struct {
	repo  interfaces.Repository
	cache *querycache.Cache
}

func NewTargetUseCase(repo interfaces.Repository, cache *querycache.Cache) *TargetUseCase {
	return &TargetUseCase{
		repo:  repo,
		cache: cache,
	}
}

// TargetInput is the submitted target form with its lines
type TargetInput struct {
	UserID      string             `json:"user_id"`
	TerritoryID string             `json:"territory_id"`
	Period      string             `json:"period"`
	Lines       []model.TargetLine `json:"lines"`
}

func (in TargetInput) apply(t *model.Target) {
	t.UserID = strings.TrimSpace(in.UserID)
	t.TerritoryID = strings.TrimSpace(in.TerritoryID)
	t.Period = strings.TrimSpace(in.Period)
	t.Lines = slices.Clone(in.Lines)
}

// TargetView is a target with the summary derived from its lines
type TargetView struct {
	*model.Target
	Summary model.TargetSummary `json:"summary"`
	Status  string              `json:"status"`
}

func newTargetView(t *model.Target) *TargetView {
	return &TargetView{Target: t, Summary: t.Summary(), Status: t.Status()}
}

func (uc *TargetUseCase) Create(ctx context.Context, in TargetInput) (*Result[*TargetView], error) {
	p, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}

	target := &model.Target{CreatedBy: p.Sub, UpdatedBy: p.Sub}
	in.apply(target)
	if err := target.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid target")
	}

	created, err := uc.repo.Target().Create(ctx, target)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create target")
	}

	broadcast(ctx, uc.cache, targetsEntity)
	return &Result[*TargetView]{Data: newTargetView(created), Notification: success("Target created")}, nil
}

func (uc *TargetUseCase) Get(ctx context.Context, id model.TargetID) (*TargetView, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	target, err := uc.repo.Target().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTargetNotFound, "target not found", goerr.V(TargetIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get target", goerr.V(TargetIDKey, id))
	}
	return newTargetView(target), nil
}

// List returns targets matching filters through the query cache
func (uc *TargetUseCase) List(ctx context.Context, filters map[string]string) ([]*TargetView, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	for field, value := range filters {
		if value != "" && !slices.Contains(targetFilters, field) {
			return nil, goerr.Wrap(ErrInvalidInput, "filter is not allowed",
				goerr.V(EntityKey, targetsEntity),
				goerr.V(FilterKey, field))
		}
	}

	key := querycache.NewKey(targetsEntity, filters)
	return querycache.Fetch(ctx, uc.cache, key, func(ctx context.Context) ([]*TargetView, error) {
		targets, err := uc.repo.Target().List(ctx, interfaces.WithEquals(key.Filters))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list targets")
		}
		views := make([]*TargetView, len(targets))
		for i, t := range targets {
			views[i] = newTargetView(t)
		}
		return views, nil
	})
}

func (uc *TargetUseCase) Update(ctx context.Context, id model.TargetID, in TargetInput) (*Result[*TargetView], error) {
	p, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target := existing.Target.Clone()
	in.apply(target)
	target.UpdatedBy = p.Sub
	if err := target.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid target", goerr.V(TargetIDKey, id))
	}

	updated, err := uc.repo.Target().Update(ctx, target)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTargetNotFound, "target was deleted", goerr.V(TargetIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to update target", goerr.V(TargetIDKey, id))
	}

	broadcast(ctx, uc.cache, targetsEntity)
	return &Result[*TargetView]{Data: newTargetView(updated), Notification: success("Target updated")}, nil
}

func (uc *TargetUseCase) Delete(ctx context.Context, id model.TargetID) (*Result[model.TargetID], error) {
	if _, err := requireReviewer(ctx); err != nil {
		return nil, err
	}

	if err := uc.repo.Target().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTargetNotFound, "target not found", goerr.V(TargetIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to delete target", goerr.V(TargetIDKey, id))
	}

	broadcast(ctx, uc.cache, targetsEntity)
	return &Result[model.TargetID]{Data: id, Notification: success("Target deleted")}, nil
}

var targetColumns = []table.Column{
	{Key: "period", Header: "Period", Sortable: true},
	{Key: "user_id", Header: "User", Sortable: true},
	{Key: "territory_id", Header: "Territory", Sortable: true},
	{Key: "lines", Header: "Products", Sortable: true, ClassName: "text-right"},
	{Key: "total_amount", Header: "Target", Sortable: true, ClassName: "text-right", Render: moneyCell("total_amount")},
	{Key: "total_achieved", Header: "Achieved", Sortable: true, ClassName: "text-right", Render: moneyCell("total_achieved")},
	{Key: "achievement", Header: "%", Sortable: true, ClassName: "text-right", Render: func(row table.Row) string {
		v, _ := row["achievement"].(float64)
		return fmt.Sprintf("%.1f%%", v)
	}},
	{Key: "status", Header: "Status", Sortable: true, Render: func(row table.Row) string {
		return model.Badge(table.Stringify(row["status"])).Label
	}},
}

// Table renders the targets list as a table page
func (uc *TargetUseCase) Table(ctx context.Context, q TableQuery) (*TableView, error) {
	targets, err := uc.List(ctx, q.Filters)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(targets))
	for i, t := range targets {
		rows[i] = t.Row()
	}
	return q.view(targetsEntity, "Targets", targetColumns, rows, emptyMessage("targets"))
}
