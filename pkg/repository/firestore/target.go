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

var targetFilterPaths = map[string]string{
	"user_id":      "UserID",
	"territory_id": "TerritoryID",
	"period":       "Period",
}

type targetRepository struct {
	client *firestore.Client
	collections
}

func (r *targetRepository) targets() *firestore.CollectionRef {
	return r.client.Collection(r.name("targets"))
}

func (r *targetRepository) Create(ctx context.Context, target *model.Target) (*model.Target, error) {
	created := target.Clone()
	if created.ID == "" {
		created.ID = model.NewTargetID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.targets().Doc(created.ID.String()).Create(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create target", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *targetRepository) Get(ctx context.Context, id model.TargetID) (*model.Target, error) {
	docSnap, err := r.targets().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get target", goerr.V("id", id))
	}

	var t model.Target
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode target", goerr.V("id", id))
	}
	return &t, nil
}

func (r *targetRepository) List(ctx context.Context, opts ...interfaces.ListOption) ([]*model.Target, error) {
	cfg := interfaces.BuildListConfig(opts...)

	query := r.targets().Query
	for _, field := range cfg.Fields() {
		path, ok := targetFilterPaths[field]
		if !ok {
			return nil, goerr.New("unsupported target filter", goerr.V("field", field))
		}
		query = query.Where(path, "==", cfg.Equals()[field])
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	targets := []*model.Target{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate targets")
		}

		var t model.Target
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode target", goerr.V("doc_id", docSnap.Ref.ID))
		}
		targets = append(targets, &t)
	}

	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Period != targets[j].Period {
			return targets[i].Period > targets[j].Period
		}
		return targets[i].ID < targets[j].ID
	})
	return targets, nil
}

func (r *targetRepository) Update(ctx context.Context, target *model.Target) (*model.Target, error) {
	docRef := r.targets().Doc(target.ID.String())

	var updated *model.Target
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", target.ID))
			}
			return goerr.Wrap(err, "failed to get target", goerr.V("id", target.ID))
		}

		var existing model.Target
		if err := docSnap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode target", goerr.V("id", target.ID))
		}

		updated = target.Clone()
		updated.CreatedAt = existing.CreatedAt
		updated.CreatedBy = existing.CreatedBy
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update target")
	}
	return updated, nil
}

func (r *targetRepository) Delete(ctx context.Context, id model.TargetID) error {
	docRef := r.targets().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check target existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete target", goerr.V("id", id))
	}
	return nil
}
