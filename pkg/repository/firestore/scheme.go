package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type schemeRepository struct {
	client *firestore.Client
	collections
}

func (r *schemeRepository) schemes() *firestore.CollectionRef {
	return r.client.Collection(r.name("schemes"))
}

func (r *schemeRepository) claims() *firestore.CollectionRef {
	return r.client.Collection(r.name("expense_claims"))
}

func (r *schemeRepository) Create(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error) {
	created := scheme.Clone()
	if created.ID == "" {
		created.ID = model.NewSchemeID()
	}
	created.Totals = model.SchemeTotals{}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.schemes().Doc(created.ID.String()).Create(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create scheme", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *schemeRepository) Get(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	docSnap, err := r.schemes().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get scheme", goerr.V("id", id))
	}

	var s model.Scheme
	if err := docSnap.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode scheme", goerr.V("id", id))
	}
	return &s, nil
}

func (r *schemeRepository) List(ctx context.Context) ([]*model.Scheme, error) {
	iter := r.schemes().Documents(ctx)
	defer iter.Stop()

	schemes := []*model.Scheme{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate schemes")
		}

		var s model.Scheme
		if err := docSnap.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode scheme", goerr.V("doc_id", docSnap.Ref.ID))
		}
		schemes = append(schemes, &s)
	}

	sort.Slice(schemes, func(i, j int) bool {
		if !schemes[i].CreatedAt.Equal(schemes[j].CreatedAt) {
			return schemes[i].CreatedAt.Before(schemes[j].CreatedAt)
		}
		return schemes[i].ID < schemes[j].ID
	})
	return schemes, nil
}

// Update writes the editable fields only so that concurrent totals
// increments are never overwritten
func (r *schemeRepository) Update(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error) {
	docRef := r.schemes().Doc(scheme.ID.String())

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "Name", Value: scheme.Name},
		{Path: "Description", Value: scheme.Description},
		{Path: "StartDate", Value: scheme.StartDate},
		{Path: "EndDate", Value: scheme.EndDate},
		{Path: "Active", Value: scheme.Active},
		{Path: "UpdatedBy", Value: scheme.UpdatedBy},
		{Path: "UpdatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", scheme.ID))
		}
		return nil, goerr.Wrap(err, "failed to update scheme", goerr.V("id", scheme.ID))
	}

	return r.Get(ctx, scheme.ID)
}

func (r *schemeRepository) Delete(ctx context.Context, id model.SchemeID) error {
	docRef := r.schemes().Doc(id.String())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(docRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get scheme", goerr.V("id", id))
		}

		refs, err := tx.Documents(r.claims().Where("SchemeID", "==", id.String()).Limit(1)).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query scheme claims", goerr.V("id", id))
		}
		if len(refs) > 0 {
			return goerr.Wrap(interfaces.ErrSchemeHasClaim, "cannot delete scheme", goerr.V("id", id))
		}

		return tx.Delete(docRef)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete scheme", goerr.V("id", id))
	}
	return nil
}

func (r *schemeRepository) RecomputeTotals(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	docRef := r.schemes().Doc(id.String())

	var s model.Scheme
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get scheme", goerr.V("id", id))
		}
		if err := docSnap.DataTo(&s); err != nil {
			return goerr.Wrap(err, "failed to decode scheme", goerr.V("id", id))
		}

		snaps, err := tx.Documents(r.claims().Where("SchemeID", "==", id.String())).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query scheme claims", goerr.V("id", id))
		}
		claims := make([]*model.ExpenseClaim, 0, len(snaps))
		for _, snap := range snaps {
			var c model.ExpenseClaim
			if err := snap.DataTo(&c); err != nil {
				return goerr.Wrap(err, "failed to decode expense claim", goerr.V("doc_id", snap.Ref.ID))
			}
			claims = append(claims, &c)
		}

		s.Totals = model.ComputeSchemeTotals(claims)
		return tx.Update(docRef, []firestore.Update{
			{Path: "Totals", Value: s.Totals},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to recompute scheme totals", goerr.V("id", id))
	}
	return &s, nil
}
