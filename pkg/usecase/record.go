package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
)

// RecordUseCase serves schema-driven master data: lists through the query
// cache, mutations validated by the entity form, and table and form views
type RecordUseCase struct {
	repo     interfaces.Repository
	registry *model.EntityRegistry
	cache    *querycache.Cache
}

func NewRecordUseCase(repo interfaces.Repository, registry *model.EntityRegistry, cache *querycache.Cache) *RecordUseCase {
	return &RecordUseCase{
		repo:     repo,
		registry: registry,
		cache:    cache,
	}
}

// Schemas returns every registered entity schema in declaration order
func (uc *RecordUseCase) Schemas() []*model.EntitySchema {
	return uc.registry.List()
}

// Schema returns the schema of entity
func (uc *RecordUseCase) Schema(entity types.EntityName) (*model.EntitySchema, error) {
	schema, err := uc.registry.Get(entity)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve entity")
	}
	return schema, nil
}

// List returns the records of entity matching filters. Results are served
// from the query cache and must not be modified by the caller.
func (uc *RecordUseCase) List(ctx context.Context, entity types.EntityName, filters map[string]string) ([]*model.Record, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	schema, err := uc.Schema(entity)
	if err != nil {
		return nil, err
	}
	for field, value := range filters {
		if value != "" && !schema.AllowsFilter(field) {
			return nil, goerr.Wrap(ErrInvalidInput, "filter is not allowed",
				goerr.V(EntityKey, entity),
				goerr.V(FilterKey, field))
		}
	}
	return uc.list(ctx, entity, filters)
}

func (uc *RecordUseCase) list(ctx context.Context, entity types.EntityName, filters map[string]string) ([]*model.Record, error) {
	key := querycache.NewKey(entity.String(), filters)
	return querycache.Fetch(ctx, uc.cache, key, func(ctx context.Context) ([]*model.Record, error) {
		records, err := uc.repo.Record().List(ctx, entity, interfaces.WithEquals(key.Filters))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list records", goerr.V(EntityKey, entity))
		}
		return records, nil
	})
}

// references loads the records of every entity the schema reads from
func (uc *RecordUseCase) references(ctx context.Context, schema *model.EntitySchema) (map[types.EntityName][]*model.Record, error) {
	refs := make(map[types.EntityName][]*model.Record)
	for _, ref := range schema.References() {
		records, err := uc.list(ctx, ref, nil)
		if err != nil {
			return nil, err
		}
		refs[ref] = records
	}
	return refs, nil
}

func (uc *RecordUseCase) Get(ctx context.Context, entity types.EntityName, id model.RecordID) (*model.Record, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	if _, err := uc.Schema(entity); err != nil {
		return nil, err
	}
	record, err := uc.repo.Record().Get(ctx, entity, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRecordNotFound, "record not found",
				goerr.V(EntityKey, entity),
				goerr.V(RecordIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get record", goerr.V(EntityKey, entity), goerr.V(RecordIDKey, id))
	}
	return record, nil
}

// Create validates values against the entity form and stores a new record
func (uc *RecordUseCase) Create(ctx context.Context, entity types.EntityName, values form.State) (*Result[*model.Record], error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	schema, err := uc.Schema(entity)
	if err != nil {
		return nil, err
	}

	var created *model.Record
	err = uc.submit(ctx, schema, types.FormModeCreate, values, func(state form.State) error {
		record := &model.Record{
			Entity:    entity,
			Values:    normalizeValues(schema, state),
			CreatedBy: p.Sub,
			UpdatedBy: p.Sub,
		}
		var err error
		created, err = uc.repo.Record().Create(ctx, record)
		if err != nil {
			return goerr.Wrap(err, "failed to create record", goerr.V(EntityKey, entity))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, schema)
	return &Result[*model.Record]{Data: created, Notification: success(schema.Label + ": record created")}, nil
}

// Update replaces the values of a record with the full submitted state
func (uc *RecordUseCase) Update(ctx context.Context, entity types.EntityName, id model.RecordID, values form.State) (*Result[*model.Record], error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	schema, err := uc.Schema(entity)
	if err != nil {
		return nil, err
	}
	existing, err := uc.Get(ctx, entity, id)
	if err != nil {
		return nil, err
	}

	var updated *model.Record
	err = uc.submit(ctx, schema, types.FormModeEdit, values, func(state form.State) error {
		record := existing.Clone()
		record.Values = normalizeValues(schema, state)
		record.UpdatedBy = p.Sub
		var err error
		updated, err = uc.repo.Record().Update(ctx, record)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(ErrRecordNotFound, "record was deleted", goerr.V(EntityKey, entity), goerr.V(RecordIDKey, id))
			}
			return goerr.Wrap(err, "failed to update record", goerr.V(EntityKey, entity), goerr.V(RecordIDKey, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, schema)
	return &Result[*model.Record]{Data: updated, Notification: success(schema.Label + ": record updated")}, nil
}

// Delete removes a record unless another entity still refers to it
func (uc *RecordUseCase) Delete(ctx context.Context, entity types.EntityName, id model.RecordID) (*Result[model.RecordID], error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}
	schema, err := uc.Schema(entity)
	if err != nil {
		return nil, err
	}

	if dependent, err := uc.referencedBy(ctx, entity, id); err != nil {
		return nil, err
	} else if dependent != "" {
		return nil, goerr.Wrap(ErrRecordInUse, "record is referenced",
			goerr.V(EntityKey, entity),
			goerr.V(RecordIDKey, id),
			goerr.V("referenced_by", dependent))
	}

	if err := uc.repo.Record().Delete(ctx, entity, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRecordNotFound, "record not found", goerr.V(EntityKey, entity), goerr.V(RecordIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to delete record", goerr.V(EntityKey, entity), goerr.V(RecordIDKey, id))
	}

	uc.invalidate(ctx, schema)
	return &Result[model.RecordID]{Data: id, Notification: success(schema.Label + ": record deleted")}, nil
}

// referencedBy returns the first entity with a select field pointing at id
func (uc *RecordUseCase) referencedBy(ctx context.Context, entity types.EntityName, id model.RecordID) (types.EntityName, error) {
	for _, dep := range uc.registry.Dependents(entity) {
		schema, err := uc.Schema(dep)
		if err != nil {
			return "", err
		}
		records, err := uc.list(ctx, dep, nil)
		if err != nil {
			return "", err
		}
		for _, f := range schema.Fields {
			if f.OptionsFrom != entity {
				continue
			}
			for _, r := range records {
				if r.Value(f.Key.String()) == id.String() {
					return dep, nil
				}
			}
		}
	}
	return "", nil
}

func (uc *RecordUseCase) submit(ctx context.Context, schema *model.EntitySchema, mode types.FormMode, values form.State, fn func(form.State) error) error {
	refs, err := uc.references(ctx, schema)
	if err != nil {
		return err
	}
	modal, err := form.NewModal(schema.Label, mode, schema.FormFields(refs))
	if err != nil {
		return goerr.Wrap(err, "failed to build form", goerr.V(EntityKey, schema.Name))
	}
	if values == nil {
		values = form.State{}
	}
	modal.Open(values)
	return modal.Submit(fn)
}

func (uc *RecordUseCase) invalidate(ctx context.Context, schema *model.EntitySchema) {
	entities := []string{schema.Name.String()}
	for _, inv := range schema.Invalidates {
		entities = append(entities, inv.String())
	}
	broadcast(ctx, uc.cache, entities...)
}

// normalizeValues keeps declared fields only and stores switches as booleans
// and numbers as float64
func normalizeValues(schema *model.EntitySchema, state form.State) map[string]any {
	values := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		key := f.Key.String()
		v, ok := state[key]
		switch f.Type {
		case types.FieldTypeSwitch:
			values[key] = state.Bool(key)
		case types.FieldTypeNumber:
			if n, ok := form.ToNumber(v); ok {
				values[key] = n
			}
		default:
			if !ok || v == nil {
				continue
			}
			if s, isString := v.(string); isString {
				v = strings.TrimSpace(s)
			}
			values[key] = v
		}
	}
	return values
}

func (uc *RecordUseCase) table(ctx context.Context, entity types.EntityName, q TableQuery) (*model.EntitySchema, []table.Column, []table.Row, error) {
	schema, err := uc.Schema(entity)
	if err != nil {
		return nil, nil, nil, err
	}
	records, err := uc.List(ctx, entity, q.Filters)
	if err != nil {
		return nil, nil, nil, err
	}
	refs, err := uc.references(ctx, schema)
	if err != nil {
		return nil, nil, nil, err
	}

	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	schema.EnrichRows(rows, refs)
	return schema, schema.TableColumns(refs), rows, nil
}

// Table renders the requested page of the entity table
func (uc *RecordUseCase) Table(ctx context.Context, entity types.EntityName, q TableQuery) (*TableView, error) {
	schema, columns, rows, err := uc.table(ctx, entity, q)
	if err != nil {
		return nil, err
	}
	return q.view(entity.String(), schema.Label, columns, rows, emptyMessage(schema.Label))
}

// Export writes every searched and sorted row over the visible columns as CSV
func (uc *RecordUseCase) Export(ctx context.Context, entity types.EntityName, q TableQuery, w io.Writer) error {
	schema, columns, rows, err := uc.table(ctx, entity, q)
	if err != nil {
		return err
	}
	t, err := q.build(columns, rows, emptyMessage(schema.Label))
	if err != nil {
		return err
	}
	if err := t.ExportCSV(w); err != nil {
		return goerr.Wrap(err, "failed to export records", goerr.V(EntityKey, entity))
	}
	return nil
}

func emptyMessage(label string) string {
	return "No " + strings.ToLower(label) + " found"
}

// FormRequest selects the modal to render. Values overlay the initial state
// so dependent dropdowns can be recomputed while the user edits.
type FormRequest struct {
	Mode   types.FormMode
	ID     model.RecordID
	Values form.State
}

// FormView is the render-ready CRUD modal
type FormView struct {
	Entity   string         `json:"entity"`
	Title    string         `json:"title"`
	Mode     types.FormMode `json:"mode"`
	Controls []form.Control `json:"controls"`
	Actions  []form.Action  `json:"actions"`
	Values   form.State     `json:"values"`
}

// Form renders the create, edit or view modal of the entity
func (uc *RecordUseCase) Form(ctx context.Context, entity types.EntityName, req FormRequest) (*FormView, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	if !req.Mode.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid form mode", goerr.V("mode", req.Mode))
	}
	schema, err := uc.Schema(entity)
	if err != nil {
		return nil, err
	}
	refs, err := uc.references(ctx, schema)
	if err != nil {
		return nil, err
	}
	fields := schema.FormFields(refs)

	title := "New " + schema.Label
	initial := form.Init(fields, nil)
	if req.Mode != types.FormModeCreate {
		if req.ID == "" {
			return nil, goerr.Wrap(ErrInvalidInput, "record id is required", goerr.V("mode", req.Mode))
		}
		record, err := uc.Get(ctx, entity, req.ID)
		if err != nil {
			return nil, err
		}
		for k, v := range record.Values {
			initial[k] = v
		}
		title = schema.Label
		if req.Mode == types.FormModeEdit {
			title = "Edit " + schema.Label
		}
	}
	if !req.Mode.ReadOnly() {
		for _, f := range fields {
			if v, ok := req.Values[f.Key]; ok {
				initial[f.Key] = v
			}
		}
	}

	modal, err := form.NewModal(title, req.Mode, fields)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build form", goerr.V(EntityKey, entity))
	}
	modal.Open(initial)

	return &FormView{
		Entity:   entity.String(),
		Title:    modal.Title,
		Mode:     modal.Mode,
		Controls: modal.Controls(),
		Actions:  modal.Actions(),
		Values:   modal.State(),
	}, nil
}
