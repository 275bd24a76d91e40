package interfaces

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// RecordRepository defines the interface for master-data records
type RecordRepository interface {
	// List retrieves all records of entity, narrowed by equality filters on values
	List(ctx context.Context, entity types.EntityName, opts ...ListOption) ([]*model.Record, error)

	// Get retrieves a record by ID
	Get(ctx context.Context, entity types.EntityName, id model.RecordID) (*model.Record, error)

	// Create stores a new record. An empty ID is generated.
	Create(ctx context.Context, record *model.Record) (*model.Record, error)

	// Update replaces the values of an existing record
	Update(ctx context.Context, record *model.Record) (*model.Record, error)

	// Delete deletes a record by ID
	Delete(ctx context.Context, entity types.EntityName, id model.RecordID) error
}
