package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

type schemeRepository struct {
	ledger *ledger
}

func (r *schemeRepository) Create(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	created := scheme.Clone()
	if created.ID == "" {
		created.ID = model.NewSchemeID()
	}
	if _, exists := l.schemes[created.ID]; exists {
		return nil, goerr.New("scheme already exists", goerr.V("id", created.ID))
	}
	created.Totals = model.SchemeTotals{}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	l.schemes[created.ID] = created
	return created.Clone(), nil
}

func (r *schemeRepository) Get(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.schemes[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
	}
	return s.Clone(), nil
}

func (r *schemeRepository) List(ctx context.Context) ([]*model.Scheme, error) {
	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*model.Scheme, 0, len(l.schemes))
	for _, s := range l.schemes {
		result = append(result, s.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *schemeRepository) Update(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.schemes[scheme.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", scheme.ID))
	}

	existing.Name = scheme.Name
	existing.Description = scheme.Description
	existing.StartDate = scheme.StartDate
	existing.EndDate = scheme.EndDate
	existing.Active = scheme.Active
	existing.UpdatedBy = scheme.UpdatedBy
	existing.UpdatedAt = time.Now().UTC()
	return existing.Clone(), nil
}

func (r *schemeRepository) Delete(ctx context.Context, id model.SchemeID) error {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.schemes[id]; !ok {
		return goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
	}
	for _, c := range l.claims {
		if c.SchemeID == id {
			return goerr.Wrap(interfaces.ErrSchemeHasClaim, "cannot delete scheme", goerr.V("id", id))
		}
	}
	delete(l.schemes, id)
	return nil
}

func (r *schemeRepository) RecomputeTotals(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.schemes[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
	}

	var claims []*model.ExpenseClaim
	for _, c := range l.claims {
		if c.SchemeID == id {
			claims = append(claims, c)
		}
	}
	s.Totals = model.ComputeSchemeTotals(claims)
	return s.Clone(), nil
}
