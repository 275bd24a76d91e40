package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

type expenseClaimRepository struct {
	ledger *ledger
}

func claimField(c *model.ExpenseClaim) func(string) string {
	return func(field string) string {
		switch field {
		case "id":
			return c.ID.String()
		case "scheme_id":
			return c.SchemeID.String()
		case "user_id":
			return c.UserID
		case "status":
			return c.Status.String()
		case "type":
			return c.Type
		case "date":
			return c.Date
		default:
			return ""
		}
	}
}

func (r *expenseClaimRepository) Create(ctx context.Context, claim *model.ExpenseClaim) (*model.ExpenseClaim, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.schemes[claim.SchemeID]; !ok {
		return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("scheme_id", claim.SchemeID))
	}

	key := claim.Key()
	if existing, ok := l.keys[key.ID()]; ok {
		return nil, goerr.Wrap(interfaces.ErrDuplicateClaim, "claim already exists",
			goerr.V("existing_id", existing),
			goerr.V("user_id", key.UserID),
			goerr.V("type", key.Type),
			goerr.V("date", key.Date),
			goerr.V("amount", key.Amount))
	}

	created := claim.Clone()
	if created.ID == "" {
		created.ID = model.NewExpenseClaimID()
	}
	created.Status = created.Status.Normalize()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	l.claims[created.ID] = created
	l.keys[key.ID()] = created.ID
	l.applyDelta(created.SchemeID, model.Contribution(created.Status, created.Amount))

	return created.Clone(), nil
}

func (r *expenseClaimRepository) Get(ctx context.Context, id model.ExpenseClaimID) (*model.ExpenseClaim, error) {
	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.claims[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
	}
	return c.Clone(), nil
}

func (r *expenseClaimRepository) List(ctx context.Context, opts ...interfaces.ListOption) ([]*model.ExpenseClaim, error) {
	cfg := interfaces.BuildListConfig(opts...)

	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := []*model.ExpenseClaim{}
	for _, c := range l.claims {
		if cfg.Match(claimField(c)) {
			result = append(result, c.Clone())
		}
	}
	sortClaims(result)
	return result, nil
}

func sortClaims(claims []*model.ExpenseClaim) {
	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].CreatedAt.Before(claims[j].CreatedAt)
		}
		return claims[i].ID < claims[j].ID
	})
}

func (r *expenseClaimRepository) FindByKey(ctx context.Context, key model.ClaimKey) (*model.ExpenseClaim, error) {
	l := r.ledger
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.keys[key.ID()]
	if !ok {
		return nil, nil
	}
	return l.claims[id].Clone(), nil
}

func (r *expenseClaimRepository) TransitionStatus(ctx context.Context, id model.ExpenseClaimID, to types.ClaimStatus, by string) (*model.ExpenseClaim, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.claims[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
	}
	from := c.Status.Normalize()
	if !from.CanTransitionTo(to) {
		return nil, goerr.Wrap(interfaces.ErrInvalidStatus, "cannot change claim status",
			goerr.V("id", id), goerr.V("from", from), goerr.V("to", to))
	}

	l.applyDelta(c.SchemeID, model.TotalsDelta(from, to, c.Amount))
	c.Status = to
	c.UpdatedBy = by
	c.UpdatedAt = time.Now().UTC()

	return c.Clone(), nil
}

func (r *expenseClaimRepository) Delete(ctx context.Context, id model.ExpenseClaimID) error {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.claims[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
	}

	l.applyDelta(c.SchemeID, model.Contribution(c.Status.Normalize(), c.Amount).Neg())
	delete(l.keys, c.Key().ID())
	delete(l.claims, id)
	return nil
}
