package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

type recordRepository struct {
	mu      sync.RWMutex
	records map[types.EntityName]map[model.RecordID]*model.Record
}

func newRecordRepository() *recordRepository {
	return &recordRepository{
		records: make(map[types.EntityName]map[model.RecordID]*model.Record),
	}
}

func (r *recordRepository) ensureEntity(entity types.EntityName) map[model.RecordID]*model.Record {
	m, ok := r.records[entity]
	if !ok {
		m = make(map[model.RecordID]*model.Record)
		r.records[entity] = m
	}
	return m
}

// copyValue deep copies the JSON-like values stored in records
func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = copyValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = copyValue(e)
		}
		return s
	case []string:
		s := make([]string, len(x))
		copy(s, x)
		return s
	default:
		return v
	}
}

func copyRecord(rec *model.Record) *model.Record {
	copied := *rec
	copied.Values = make(map[string]any, len(rec.Values))
	for k, v := range rec.Values {
		copied.Values[k] = copyValue(v)
	}
	return &copied
}

func recordField(rec *model.Record) func(string) string {
	return func(field string) string {
		if field == "id" {
			return rec.ID.String()
		}
		return rec.Value(field)
	}
}

func (r *recordRepository) List(ctx context.Context, entity types.EntityName, opts ...interfaces.ListOption) ([]*model.Record, error) {
	cfg := interfaces.BuildListConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Record{}
	for _, rec := range r.records[entity] {
		if cfg.Match(recordField(rec)) {
			result = append(result, copyRecord(rec))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *recordRepository) Get(ctx context.Context, entity types.EntityName, id model.RecordID) (*model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[entity][id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", entity), goerr.V("id", id))
	}
	return copyRecord(rec), nil
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) (*model.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.ensureEntity(record.Entity)
	created := copyRecord(record)
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	if _, exists := m[created.ID]; exists {
		return nil, goerr.New("record already exists", goerr.V("entity", record.Entity), goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	m[created.ID] = created
	return copyRecord(created), nil
}

func (r *recordRepository) Update(ctx context.Context, record *model.Record) (*model.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[record.Entity][record.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", record.Entity), goerr.V("id", record.ID))
	}

	updated := copyRecord(record)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.UpdatedAt = time.Now().UTC()
	r.records[record.Entity][record.ID] = updated
	return copyRecord(updated), nil
}

func (r *recordRepository) Delete(ctx context.Context, entity types.EntityName, id model.RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[entity][id]; !ok {
		return goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", entity), goerr.V("id", id))
	}
	delete(r.records[entity], id)
	return nil
}
