package interfaces

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

// TargetRepository defines the interface for sales targets
type TargetRepository interface {
	Create(ctx context.Context, target *model.Target) (*model.Target, error)
	Get(ctx context.Context, id model.TargetID) (*model.Target, error)

	// List retrieves targets. Supported filters are user_id, territory_id and period.
	List(ctx context.Context, opts ...ListOption) ([]*model.Target, error)

	Update(ctx context.Context, target *model.Target) (*model.Target, error)
	Delete(ctx context.Context, id model.TargetID) error
}
