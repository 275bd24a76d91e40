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

// recordRepository stores each entity in its own records_{entity} collection
type recordRepository struct {
	client *firestore.Client
	collections
}

func (r *recordRepository) collection(entity types.EntityName) *firestore.CollectionRef {
	return r.client.Collection(r.name("records_" + entity.String()))
}

func (r *recordRepository) List(ctx context.Context, entity types.EntityName, opts ...interfaces.ListOption) ([]*model.Record, error) {
	cfg := interfaces.BuildListConfig(opts...)

	iter := r.collection(entity).Documents(ctx)
	defer iter.Stop()

	records := []*model.Record{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate records", goerr.V("entity", entity))
		}

		var rec model.Record
		if err := docSnap.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to decode record", goerr.V("entity", entity), goerr.V("doc_id", docSnap.Ref.ID))
		}
		if rec.Values == nil {
			rec.Values = map[string]any{}
		}

		matched := cfg.Match(func(field string) string {
			if field == "id" {
				return rec.ID.String()
			}
			return rec.Value(field)
		})
		if matched {
			records = append(records, &rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (r *recordRepository) Get(ctx context.Context, entity types.EntityName, id model.RecordID) (*model.Record, error) {
	docSnap, err := r.collection(entity).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", entity), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get record", goerr.V("entity", entity), goerr.V("id", id))
	}

	var rec model.Record
	if err := docSnap.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode record", goerr.V("entity", entity), goerr.V("id", id))
	}
	if rec.Values == nil {
		rec.Values = map[string]any{}
	}
	return &rec, nil
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) (*model.Record, error) {
	created := record.Clone()
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(created.Entity).Doc(created.ID.String()).Create(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create record", goerr.V("entity", created.Entity), goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *recordRepository) Update(ctx context.Context, record *model.Record) (*model.Record, error) {
	docRef := r.collection(record.Entity).Doc(record.ID.String())

	var updated *model.Record
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", record.Entity), goerr.V("id", record.ID))
			}
			return goerr.Wrap(err, "failed to get record", goerr.V("id", record.ID))
		}

		var existing model.Record
		if err := docSnap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode record", goerr.V("id", record.ID))
		}

		updated = record.Clone()
		updated.CreatedAt = existing.CreatedAt
		updated.CreatedBy = existing.CreatedBy
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update record")
	}
	return updated, nil
}

func (r *recordRepository) Delete(ctx context.Context, entity types.EntityName, id model.RecordID) error {
	docRef := r.collection(entity).Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", entity), goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check record existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete record", goerr.V("entity", entity), goerr.V("id", id))
	}
	return nil
}
