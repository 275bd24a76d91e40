package interfaces

import (
	"context"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// ExpenseClaimRepository defines the interface for expense claims. Every
// write keeps the totals of the parent scheme consistent in the same unit of
// work.
type ExpenseClaimRepository interface {
	// Create stores a claim unless another claim has the same ClaimKey, in
	// which case ErrDuplicateClaim is returned and nothing is written
	Create(ctx context.Context, claim *model.ExpenseClaim) (*model.ExpenseClaim, error)

	// Get retrieves a claim by ID
	Get(ctx context.Context, id model.ExpenseClaimID) (*model.ExpenseClaim, error)

	// List retrieves claims. Supported filters are scheme_id, user_id and status.
	List(ctx context.Context, opts ...ListOption) ([]*model.ExpenseClaim, error)

	// FindByKey returns the claim with key, or nil when there is none
	FindByKey(ctx context.Context, key model.ClaimKey) (*model.ExpenseClaim, error)

	// TransitionStatus moves a claim to status and applies the totals delta
	// to its scheme atomically. Invalid transitions return ErrInvalidStatus.
	TransitionStatus(ctx context.Context, id model.ExpenseClaimID, to types.ClaimStatus, by string) (*model.ExpenseClaim, error)

	// Delete deletes a claim and reverses its contribution to the scheme totals
	Delete(ctx context.Context, id model.ExpenseClaimID) error
}
