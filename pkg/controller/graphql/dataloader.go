package graphql

import (
	"context"
	"errors"
	"sync"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

// DataLoaders holds all data loaders for batching queries. Loaders are
// request-scoped: each list is read at most once per request and served from
// memory to every field that needs it.
type DataLoaders struct {
	SchemeLoader         *SchemeLoader
	ClaimsBySchemeLoader *ClaimsBySchemeLoader
	RecordLoader         *RecordLoader
}

// NewDataLoaders creates a new instance of DataLoaders
func NewDataLoaders(uc *usecase.UseCases) *DataLoaders {
	return &DataLoaders{
		SchemeLoader:         NewSchemeLoader(uc.Scheme),
		ClaimsBySchemeLoader: NewClaimsBySchemeLoader(uc.ExpenseClaim),
		RecordLoader:         NewRecordLoader(uc.Record),
	}
}

// once runs a load at most once per key and remembers its outcome
type once[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*onceEntry[V]
}

type onceEntry[V any] struct {
	once  sync.Once
	value V
	err   error
}

func (o *once[K, V]) get(key K, load func() (V, error)) (V, error) {
	o.mu.Lock()
	if o.entries == nil {
		o.entries = make(map[K]*onceEntry[V])
	}
	entry, ok := o.entries[key]
	if !ok {
		entry = &onceEntry[V]{}
		o.entries[key] = entry
	}
	o.mu.Unlock()

	entry.once.Do(func() {
		entry.value, entry.err = load()
	})
	return entry.value, entry.err
}

// SchemeLoader batches Scheme fetches by ID
type SchemeLoader struct {
	uc  *usecase.SchemeUseCase
	all once[struct{}, map[model.SchemeID]*model.Scheme]
}

// NewSchemeLoader creates a new SchemeLoader
func NewSchemeLoader(uc *usecase.SchemeUseCase) *SchemeLoader {
	return &SchemeLoader{uc: uc}
}

// Load fetches a single scheme. A missing scheme is nil.
func (l *SchemeLoader) Load(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	schemes, err := l.LoadMany(ctx, []model.SchemeID{id})
	if err != nil {
		return nil, err
	}
	return schemes[id], nil
}

// LoadMany fetches schemes for multiple IDs from a single list
func (l *SchemeLoader) LoadMany(ctx context.Context, ids []model.SchemeID) (map[model.SchemeID]*model.Scheme, error) {
	byID, err := l.all.get(struct{}{}, func() (map[model.SchemeID]*model.Scheme, error) {
		schemes, err := l.uc.List(ctx)
		if err != nil {
			return nil, err
		}
		byID := make(map[model.SchemeID]*model.Scheme, len(schemes))
		for _, s := range schemes {
			byID[s.ID] = s
		}
		return byID, nil
	})
	if err != nil {
		return nil, err
	}

	result := make(map[model.SchemeID]*model.Scheme, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			result[id] = s
		}
	}
	return result, nil
}

// ClaimsBySchemeLoader batches ExpenseClaim fetches by Scheme ID
type ClaimsBySchemeLoader struct {
	uc  *usecase.ExpenseClaimUseCase
	all once[struct{}, map[model.SchemeID][]*model.ExpenseClaim]
}

// NewClaimsBySchemeLoader creates a new ClaimsBySchemeLoader
func NewClaimsBySchemeLoader(uc *usecase.ExpenseClaimUseCase) *ClaimsBySchemeLoader {
	return &ClaimsBySchemeLoader{uc: uc}
}

// Load fetches the claims of a single scheme
func (l *ClaimsBySchemeLoader) Load(ctx context.Context, schemeID model.SchemeID) ([]*model.ExpenseClaim, error) {
	claims, err := l.LoadMany(ctx, []model.SchemeID{schemeID})
	if err != nil {
		return nil, err
	}
	return claims[schemeID], nil
}

// LoadMany fetches the claims of multiple schemes from a single list. The
// list is the one the caller may see, so a sales representative only gets
// their own claims.
func (l *ClaimsBySchemeLoader) LoadMany(ctx context.Context, schemeIDs []model.SchemeID) (map[model.SchemeID][]*model.ExpenseClaim, error) {
	grouped, err := l.all.get(struct{}{}, func() (map[model.SchemeID][]*model.ExpenseClaim, error) {
		claims, err := l.uc.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		grouped := make(map[model.SchemeID][]*model.ExpenseClaim)
		for _, c := range claims {
			grouped[c.SchemeID] = append(grouped[c.SchemeID], c)
		}
		return grouped, nil
	})
	if err != nil {
		return nil, err
	}

	result := make(map[model.SchemeID][]*model.ExpenseClaim, len(schemeIDs))
	for _, id := range schemeIDs {
		result[id] = grouped[id]
	}
	return result, nil
}

// RecordLoader batches master-data Record fetches by entity and ID
type RecordLoader struct {
	uc       *usecase.RecordUseCase
	byEntity once[types.EntityName, map[model.RecordID]*model.Record]
}

// NewRecordLoader creates a new RecordLoader
func NewRecordLoader(uc *usecase.RecordUseCase) *RecordLoader {
	return &RecordLoader{uc: uc}
}

// Load fetches a single record. A missing record or an entity that is not
// registered yields nil.
func (l *RecordLoader) Load(ctx context.Context, entity types.EntityName, id model.RecordID) (*model.Record, error) {
	records, err := l.LoadMany(ctx, entity, []model.RecordID{id})
	if err != nil {
		return nil, err
	}
	return records[id], nil
}

// LoadMany fetches records of one entity for multiple IDs from a single list
func (l *RecordLoader) LoadMany(ctx context.Context, entity types.EntityName, ids []model.RecordID) (map[model.RecordID]*model.Record, error) {
	byID, err := l.byEntity.get(entity, func() (map[model.RecordID]*model.Record, error) {
		records, err := l.uc.List(ctx, entity, nil)
		if err != nil {
			if errors.Is(err, model.ErrUnknownEntity) {
				return nil, nil
			}
			return nil, err
		}
		byID := make(map[model.RecordID]*model.Record, len(records))
		for _, r := range records {
			byID[r.ID] = r
		}
		return byID, nil
	})
	if err != nil {
		return nil, err
	}

	result := make(map[model.RecordID]*model.Record, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			result[id] = r
		}
	}
	return result, nil
}

// dataLoadersKey is the context key for data loaders
type dataLoadersKey struct{}

// WithDataLoaders adds data loaders to the context
func WithDataLoaders(ctx context.Context, loaders *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoadersKey{}, loaders)
}

// GetDataLoaders retrieves data loaders from the context
func GetDataLoaders(ctx context.Context) *DataLoaders {
	loaders, _ := ctx.Value(dataLoadersKey{}).(*DataLoaders)
	return loaders
}
