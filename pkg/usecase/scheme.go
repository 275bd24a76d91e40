package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
)

type SchemeUseCase struct {
	repo  interfaces.Repository
	cache *querycache.Cache
}

func NewSchemeUseCase(repo interfaces.Repository, cache *querycache.Cache) *SchemeUseCase {
	return &SchemeUseCase{
		repo:  repo,
		cache: cache,
	}
}

// SchemeInput holds the editable fields of a scheme. Totals are derived from
// claims and never accepted from clients.
type SchemeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Active      bool   `json:"active"`
}

func (in SchemeInput) apply(s *model.Scheme) {
	s.Name = strings.TrimSpace(in.Name)
	s.Description = strings.TrimSpace(in.Description)
	s.StartDate = in.StartDate
	s.EndDate = in.EndDate
	s.Active = in.Active
}

func (uc *SchemeUseCase) Create(ctx context.Context, in SchemeInput) (*Result[*model.Scheme], error) {
	p, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}

	scheme := &model.Scheme{CreatedBy: p.Sub, UpdatedBy: p.Sub}
	in.apply(scheme)
	if err := scheme.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid scheme")
	}

	created, err := uc.repo.Scheme().Create(ctx, scheme)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create scheme")
	}

	broadcast(ctx, uc.cache, schemesEntity)
	return &Result[*model.Scheme]{Data: created, Notification: success("Scheme created")}, nil
}

func (uc *SchemeUseCase) Get(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	scheme, err := uc.repo.Scheme().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrSchemeNotFound, "scheme not found", goerr.V(SchemeIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get scheme", goerr.V(SchemeIDKey, id))
	}
	return scheme, nil
}

// List returns every scheme through the query cache
func (uc *SchemeUseCase) List(ctx context.Context) ([]*model.Scheme, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	return querycache.Fetch(ctx, uc.cache, querycache.NewKey(schemesEntity, nil), func(ctx context.Context) ([]*model.Scheme, error) {
		schemes, err := uc.repo.Scheme().List(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list schemes")
		}
		return schemes, nil
	})
}

// Update replaces the descriptive fields of a scheme. Totals are kept.
func (uc *SchemeUseCase) Update(ctx context.Context, id model.SchemeID, in SchemeInput) (*Result[*model.Scheme], error) {
	p, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	scheme := existing.Clone()
	in.apply(scheme)
	scheme.UpdatedBy = p.Sub
	if err := scheme.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid scheme", goerr.V(SchemeIDKey, id))
	}

	updated, err := uc.repo.Scheme().Update(ctx, scheme)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrSchemeNotFound, "scheme was deleted", goerr.V(SchemeIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to update scheme", goerr.V(SchemeIDKey, id))
	}

	broadcast(ctx, uc.cache, schemesEntity)
	return &Result[*model.Scheme]{Data: updated, Notification: success("Scheme updated")}, nil
}

// Delete removes a scheme that has no claims
func (uc *SchemeUseCase) Delete(ctx context.Context, id model.SchemeID) (*Result[model.SchemeID], error) {
	if _, err := requireReviewer(ctx); err != nil {
		return nil, err
	}

	if err := uc.repo.Scheme().Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrSchemeNotFound, "scheme not found", goerr.V(SchemeIDKey, id))
		case errors.Is(err, interfaces.ErrSchemeHasClaim):
			return nil, goerr.Wrap(ErrSchemeInUse, "scheme has expense claims", goerr.V(SchemeIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to delete scheme", goerr.V(SchemeIDKey, id))
	}

	broadcast(ctx, uc.cache, schemesEntity)
	return &Result[model.SchemeID]{Data: id, Notification: success("Scheme deleted")}, nil
}

// Recompute rebuilds the stored totals of a scheme from its claims
func (uc *SchemeUseCase) Recompute(ctx context.Context, id model.SchemeID) (*Result[*model.Scheme], error) {
	if _, err := requireReviewer(ctx); err != nil {
		return nil, err
	}

	scheme, err := uc.repo.Scheme().RecomputeTotals(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrSchemeNotFound, "scheme not found", goerr.V(SchemeIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to recompute scheme totals", goerr.V(SchemeIDKey, id))
	}

	broadcast(ctx, uc.cache, schemesEntity)
	return &Result[*model.Scheme]{Data: scheme, Notification: success("Scheme totals recomputed")}, nil
}

var schemeColumns = []table.Column{
	{Key: "name", Header: "Name", Sortable: true},
	{Key: "start_date", Header: "Start", Sortable: true},
	{Key: "end_date", Header: "End", Sortable: true},
	{Key: "claims_generated", Header: "Claims", Sortable: true, ClassName: "text-right"},
	{Key: "claims_approved", Header: "Approved", Sortable: true, ClassName: "text-right"},
	{Key: "total_payout", Header: "Payout", Sortable: true, ClassName: "text-right", Render: moneyCell("total_payout")},
	{Key: "active", Header: "Status", Sortable: true, Render: func(row table.Row) string {
		v, _ := row["active"].(bool)
		return model.BoolBadge(v).Label
	}},
}

// Table renders the schemes list as a table page
func (uc *SchemeUseCase) Table(ctx context.Context, q TableQuery) (*TableView, error) {
	schemes, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(schemes))
	for i, s := range schemes {
		rows[i] = s.Row()
	}
	return q.view(schemesEntity, "Schemes", schemeColumns, rows, emptyMessage("schemes"))
}
