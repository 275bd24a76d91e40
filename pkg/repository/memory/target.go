package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

type targetRepository struct {
	mu      sync.RWMutex
	targets map[model.TargetID]*model.Target
}

func newTargetRepository() *targetRepository {
	return &targetRepository{
		targets: make(map[model.TargetID]*model.Target),
	}
}

func targetField(t *model.Target) func(string) string {
	return func(field string) string {
		switch field {
		case "id":
			return t.ID.String()
		case "user_id":
			return t.UserID
		case "territory_id":
			return t.TerritoryID
		case "period":
			return t.Period
		default:
			return ""
		}
	}
}

func (r *targetRepository) Create(ctx context.Context, target *model.Target) (*model.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := target.Clone()
	if created.ID == "" {
		created.ID = model.NewTargetID()
	}
	if _, exists := r.targets[created.ID]; exists {
		return nil, goerr.New("target already exists", goerr.V("id", created.ID))
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.targets[created.ID] = created
	return created.Clone(), nil
}

func (r *targetRepository) Get(ctx context.Context, id model.TargetID) (*model.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.targets[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", id))
	}
	return t.Clone(), nil
}

func (r *targetRepository) List(ctx context.Context, opts ...interfaces.ListOption) ([]*model.Target, error) {
	cfg := interfaces.BuildListConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Target{}
	for _, t := range r.targets {
		if cfg.Match(targetField(t)) {
			result = append(result, t.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Period != result[j].Period {
			return result[i].Period > result[j].Period
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *targetRepository) Update(ctx context.Context, target *model.Target) (*model.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.targets[target.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", target.ID))
	}

	updated := target.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.UpdatedAt = time.Now().UTC()
	r.targets[target.ID] = updated
	return updated.Clone(), nil
}

func (r *targetRepository) Delete(ctx context.Context, id model.TargetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.targets[id]; !ok {
		return goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", id))
	}
	delete(r.targets, id)
	return nil
}
