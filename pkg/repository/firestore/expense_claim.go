package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// claimKeyDoc reserves a ClaimKey. Its document ID is ClaimKey.ID(), so two
// concurrent creates of the same key conflict inside the transaction.
type claimKeyDoc struct {
	ClaimID   model.ExpenseClaimID `firestore:"ClaimID"`
	CreatedAt time.Time            `firestore:"CreatedAt"`
}

var claimFilterPaths = map[string]string{
	"scheme_id": "SchemeID",
	"user_id":   "UserID",
	"status":    "Status",
	"type":      "Type",
	"date":      "Date",
}

type expenseClaimRepository struct {
	client *firestore.Client
	collections
}

func (r *expenseClaimRepository) claims() *firestore.CollectionRef {
	return r.client.Collection(r.name("expense_claims"))
}

func (r *expenseClaimRepository) keys() *firestore.CollectionRef {
	return r.client.Collection(r.name("claim_keys"))
}

func (r *expenseClaimRepository) schemes() *firestore.CollectionRef {
	return r.client.Collection(r.name("schemes"))
}

// totalsUpdates converts a totals delta into increments on the scheme document
func totalsUpdates(delta model.SchemeTotals, now time.Time) []firestore.Update {
	return []firestore.Update{
		{Path: "Totals.ClaimsGenerated", Value: firestore.Increment(delta.ClaimsGenerated)},
		{Path: "Totals.ClaimsApproved", Value: firestore.Increment(delta.ClaimsApproved)},
		{Path: "Totals.TotalPayout", Value: firestore.Increment(int64(delta.TotalPayout))},
		{Path: "UpdatedAt", Value: now},
	}
}

func (r *expenseClaimRepository) Create(ctx context.Context, claim *model.ExpenseClaim) (*model.ExpenseClaim, error) {
	created := claim.Clone()
	if created.ID == "" {
		created.ID = model.NewExpenseClaimID()
	}
	created.Status = created.Status.Normalize()
	key := created.Key()

	claimRef := r.claims().Doc(created.ID.String())
	keyRef := r.keys().Doc(key.ID())
	schemeRef := r.schemes().Doc(created.SchemeID.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(schemeRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("scheme_id", created.SchemeID))
			}
			return goerr.Wrap(err, "failed to get scheme", goerr.V("scheme_id", created.SchemeID))
		}

		keySnap, err := tx.Get(keyRef)
		if err == nil {
			var existing claimKeyDoc
			_ = keySnap.DataTo(&existing)
			return goerr.Wrap(interfaces.ErrDuplicateClaim, "claim already exists",
				goerr.V("existing_id", existing.ClaimID),
				goerr.V("user_id", key.UserID),
				goerr.V("type", key.Type),
				goerr.V("date", key.Date),
				goerr.V("amount", key.Amount))
		}
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get claim key")
		}

		now := time.Now().UTC()
		created.CreatedAt = now
		created.UpdatedAt = now

		if err := tx.Create(claimRef, created); err != nil {
			return goerr.Wrap(err, "failed to create claim")
		}
		if err := tx.Create(keyRef, &claimKeyDoc{ClaimID: created.ID, CreatedAt: now}); err != nil {
			return goerr.Wrap(err, "failed to reserve claim key")
		}
		return tx.Update(schemeRef, totalsUpdates(model.Contribution(created.Status, created.Amount), now))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create expense claim", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *expenseClaimRepository) Get(ctx context.Context, id model.ExpenseClaimID) (*model.ExpenseClaim, error) {
	docSnap, err := r.claims().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get expense claim", goerr.V("id", id))
	}

	var c model.ExpenseClaim
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode expense claim", goerr.V("id", id))
	}
	return &c, nil
}

func (r *expenseClaimRepository) List(ctx context.Context, opts ...interfaces.ListOption) ([]*model.ExpenseClaim, error) {
	cfg := interfaces.BuildListConfig(opts...)

	query := r.claims().Query
	for _, field := range cfg.Fields() {
		path, ok := claimFilterPaths[field]
		if !ok {
			return nil, goerr.New("unsupported claim filter", goerr.V("field", field))
		}
		query = query.Where(path, "==", cfg.Equals()[field])
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	claims := []*model.ExpenseClaim{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate expense claims")
		}

		var c model.ExpenseClaim
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode expense claim", goerr.V("doc_id", docSnap.Ref.ID))
		}
		claims = append(claims, &c)
	}

	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].CreatedAt.Before(claims[j].CreatedAt)
		}
		return claims[i].ID < claims[j].ID
	})
	return claims, nil
}

func (r *expenseClaimRepository) FindByKey(ctx context.Context, key model.ClaimKey) (*model.ExpenseClaim, error) {
	keySnap, err := r.keys().Doc(key.ID()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get claim key")
	}

	var k claimKeyDoc
	if err := keySnap.DataTo(&k); err != nil {
		return nil, goerr.Wrap(err, "failed to decode claim key")
	}
	return r.Get(ctx, k.ClaimID)
}

func (r *expenseClaimRepository) TransitionStatus(ctx context.Context, id model.ExpenseClaimID, to types.ClaimStatus, by string) (*model.ExpenseClaim, error) {
	claimRef := r.claims().Doc(id.String())

	var updated model.ExpenseClaim
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(claimRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get expense claim", goerr.V("id", id))
		}
		if err := docSnap.DataTo(&updated); err != nil {
			return goerr.Wrap(err, "failed to decode expense claim", goerr.V("id", id))
		}

		from := updated.Status.Normalize()
		if !from.CanTransitionTo(to) {
			return goerr.Wrap(interfaces.ErrInvalidStatus, "cannot change claim status",
				goerr.V("id", id), goerr.V("from", from), goerr.V("to", to))
		}

		now := time.Now().UTC()
		updated.Status = to
		updated.UpdatedBy = by
		updated.UpdatedAt = now

		if err := tx.Update(claimRef, []firestore.Update{
			{Path: "Status", Value: to.String()},
			{Path: "UpdatedBy", Value: by},
			{Path: "UpdatedAt", Value: now},
		}); err != nil {
			return goerr.Wrap(err, "failed to update expense claim")
		}

		delta := model.TotalsDelta(from, to, updated.Amount)
		if delta.IsZero() {
			return nil
		}
		return tx.Update(r.schemes().Doc(updated.SchemeID.String()), totalsUpdates(delta, now))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transition expense claim", goerr.V("id", id), goerr.V("to", to))
	}

	return &updated, nil
}

func (r *expenseClaimRepository) Delete(ctx context.Context, id model.ExpenseClaimID) error {
	claimRef := r.claims().Doc(id.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(claimRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get expense claim", goerr.V("id", id))
		}

		var c model.ExpenseClaim
		if err := docSnap.DataTo(&c); err != nil {
			return goerr.Wrap(err, "failed to decode expense claim", goerr.V("id", id))
		}

		if err := tx.Delete(claimRef); err != nil {
			return goerr.Wrap(err, "failed to delete expense claim")
		}
		if err := tx.Delete(r.keys().Doc(c.Key().ID())); err != nil {
			return goerr.Wrap(err, "failed to release claim key")
		}
		delta := model.Contribution(c.Status.Normalize(), c.Amount).Neg()
		return tx.Update(r.schemes().Doc(c.SchemeID.String()), totalsUpdates(delta, time.Now().UTC()))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete expense claim", goerr.V("id", id))
	}
	return nil
}
