package interfaces

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

// SchemeRepository defines the interface for incentive schemes
type SchemeRepository interface {
	Create(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error)
	Get(ctx context.Context, id model.SchemeID) (*model.Scheme, error)
	List(ctx context.Context) ([]*model.Scheme, error)

	// Update replaces the descriptive fields. Totals are never written.
	Update(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error)

	// Delete deletes a scheme. It fails with ErrSchemeHasClaim while claims reference it.
	Delete(ctx context.Context, id model.SchemeID) error

	// RecomputeTotals derives the totals from the claims of the scheme and
	// stores them atomically
	RecomputeTotals(ctx context.Context, id model.SchemeID) (*model.Scheme, error)
}
