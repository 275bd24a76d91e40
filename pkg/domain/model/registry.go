package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// EntityRegistry holds the schemas of every master-data entity in
// declaration order
type EntityRegistry struct {
	order   []types.EntityName
	schemas map[types.EntityName]*EntitySchema
}

// NewEntityRegistry validates schemas, including cross-entity references
func NewEntityRegistry(schemas ...*EntitySchema) (*EntityRegistry, error) {
	r := &EntityRegistry{
		schemas: make(map[types.EntityName]*EntitySchema, len(schemas)),
	}
	for _, s := range schemas {
		if err := r.put(s); err != nil {
			return nil, err
		}
	}
	if err := r.validateReferences(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *EntityRegistry) put(s *EntitySchema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := r.schemas[s.Name]; !ok {
		r.order = append(r.order, s.Name)
	}
	r.schemas[s.Name] = s
	return nil
}

func (r *EntityRegistry) validateReferences() error {
	for _, name := range r.order {
		s := r.schemas[name]
		for _, ref := range s.References() {
			if _, ok := r.schemas[ref]; !ok {
				return goerr.Wrap(ErrUnknownEntity, "schema references an unknown entity", goerr.V(EntityKey, name), goerr.V("ref", ref))
			}
		}
		for _, inv := range s.Invalidates {
			if _, ok := r.schemas[inv]; !ok {
				return goerr.Wrap(ErrUnknownEntity, "invalidates references an unknown entity", goerr.V(EntityKey, name), goerr.V("ref", inv))
			}
		}
	}
	return nil
}

// Override returns a new registry where schemas replace entries of the same
// name and new names are appended
func (r *EntityRegistry) Override(schemas ...*EntitySchema) (*EntityRegistry, error) {
	next := &EntityRegistry{
		order:   slices.Clone(r.order),
		schemas: make(map[types.EntityName]*EntitySchema, len(r.schemas)+len(schemas)),
	}
	for k, v := range r.schemas {
		next.schemas[k] = v
	}
	for _, s := range schemas {
		if err := next.put(s); err != nil {
			return nil, err
		}
	}
	if err := next.validateReferences(); err != nil {
		return nil, err
	}
	return next, nil
}

// Get returns the schema of entity
func (r *EntityRegistry) Get(entity types.EntityName) (*EntitySchema, error) {
	s, ok := r.schemas[entity]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownEntity, "entity is not registered", goerr.V(EntityKey, entity))
	}
	return s, nil
}

// List returns all schemas in declaration order
func (r *EntityRegistry) List() []*EntitySchema {
	out := make([]*EntitySchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.schemas[name])
	}
	return out
}

// Dependents returns the entities whose forms or columns read from entity
func (r *EntityRegistry) Dependents(entity types.EntityName) []types.EntityName {
	var out []types.EntityName
	for _, name := range r.order {
		if slices.Contains(r.schemas[name].References(), entity) {
			out = append(out, name)
		}
	}
	return out
}

func activeField() FieldSchema {
	return FieldSchema{Key: "active", Label: "Active", Type: types.FieldTypeSwitch}
}

func activeColumn() ColumnSchema {
	return ColumnSchema{Key: "active", Header: "Status", Sortable: true, Badge: true}
}

// DefaultEntitySchemas returns the built-in master-data entities
func DefaultEntitySchemas() []*EntitySchema {
	return []*EntitySchema{
		{
			Name:  "countries",
			Label: "Countries",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "code", Label: "Code", Type: types.FieldTypeText, Required: true, Placeholder: "MX"},
				{Key: "currency", Label: "Currency", Type: types.FieldTypeText},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "code", Header: "Code", Sortable: true},
				{Key: "currency", Header: "Currency"},
				activeColumn(),
			},
		},
		{
			Name:  "states",
			Label: "States",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "country_id", Label: "Country", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "countries"},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "country_id", Header: "Country", Sortable: true},
				activeColumn(),
			},
			ListFilters: []string{"country_id"},
		},
		{
			Name:  "cities",
			Label: "Cities",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "country_id", Label: "Country", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "countries"},
				{Key: "state_id", Label: "State", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "states", FilterBy: "country_id"},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "state_id", Header: "State", Sortable: true},
				{Key: "country_id", Header: "Country", Sortable: true},
				activeColumn(),
			},
			ListFilters: []string{"country_id", "state_id"},
		},
		{
			Name:  "zones",
			Label: "Zones",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "code", Label: "Code", Type: types.FieldTypeText},
				{Key: "description", Label: "Description", Type: types.FieldTypeTextarea},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "code", Header: "Code", Sortable: true},
				activeColumn(),
			},
		},
		{
			Name:  "territories",
			Label: "Territories",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "zone_id", Label: "Zone", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "zones"},
				{Key: "city_id", Label: "City", Type: types.FieldTypeSelect, OptionsFrom: "cities"},
				{Key: "manager_email", Label: "Manager Email", Type: types.FieldTypeEmail},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "zone_id", Header: "Zone", Sortable: true},
				{Key: "city_id", Header: "City"},
				{Key: "manager_email", Header: "Manager"},
				activeColumn(),
			},
			ListFilters: []string{"zone_id", "city_id"},
		},
		{
			Name:  "warehouses",
			Label: "Warehouses",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "code", Label: "Code", Type: types.FieldTypeText, Required: true},
				{Key: "country_id", Label: "Country", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "countries"},
				{Key: "state_id", Label: "State", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "states", FilterBy: "country_id"},
				{Key: "city_id", Label: "City", Type: types.FieldTypeSelect, OptionsFrom: "cities", FilterBy: "state_id"},
				{Key: "address", Label: "Address", Type: types.FieldTypeTextarea},
				{Key: "capacity", Label: "Capacity", Type: types.FieldTypeNumber},
				{Key: "contact_email", Label: "Contact Email", Type: types.FieldTypeEmail},
				{Key: "opened_on", Label: "Opened On", Type: types.FieldTypeDate},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "code", Header: "Code", Sortable: true},
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "city_id", Header: "City", Sortable: true},
				{Key: "capacity", Header: "Capacity", Sortable: true, ClassName: "text-right"},
				{Key: "opened_on", Header: "Opened", Sortable: true},
				activeColumn(),
			},
			ListFilters: []string{"country_id", "state_id", "city_id"},
		},
		{
			Name:  "categories",
			Label: "Categories",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "description", Label: "Description", Type: types.FieldTypeTextarea},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "product_count", Header: "Products", Sortable: true, ClassName: "text-right", CountOf: "products", CountBy: "category_id"},
				activeColumn(),
			},
		},
		{
			Name:  "products",
			Label: "Products",
			Fields: []FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "sku", Label: "SKU", Type: types.FieldTypeText, Required: true},
				{Key: "category_id", Label: "Category", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "categories"},
				{Key: "price", Label: "Price", Type: types.FieldTypeNumber, Required: true},
				{Key: "description", Label: "Description", Type: types.FieldTypeTextarea},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "sku", Header: "SKU", Sortable: true},
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "category_id", Header: "Category", Sortable: true},
				{Key: "price", Header: "Price", Sortable: true, ClassName: "text-right"},
				activeColumn(),
			},
			Invalidates: []types.EntityName{"categories"},
			ListFilters: []string{"category_id"},
		},
		{
			Name:  "presentations",
			Label: "Presentations",
			Fields: []FieldSchema{
				{Key: "product_id", Label: "Product", Type: types.FieldTypeSelect, Required: true, OptionsFrom: "products"},
				{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true},
				{Key: "unit", Label: "Unit", Type: types.FieldTypeSelect, Required: true, Options: []form.Option{
					{Value: "piece", Label: "Piece"},
					{Value: "box", Label: "Box"},
					{Value: "pack", Label: "Pack"},
					{Value: "kg", Label: "Kilogram"},
					{Value: "l", Label: "Liter"},
				}},
				{Key: "units_per_pack", Label: "Units per Pack", Type: types.FieldTypeNumber},
				{Key: "price", Label: "Price", Type: types.FieldTypeNumber},
				activeField(),
			},
			Columns: []ColumnSchema{
				{Key: "name", Header: "Name", Sortable: true},
				{Key: "product_id", Header: "Product", Sortable: true},
				{Key: "unit", Header: "Unit"},
				{Key: "units_per_pack", Header: "Units", Sortable: true, ClassName: "text-right"},
				{Key: "price", Header: "Price", Sortable: true, ClassName: "text-right"},
				activeColumn(),
			},
			Invalidates: []types.EntityName{"products"},
			ListFilters: []string{"product_id"},
		},
	}
}

// DefaultEntityRegistry returns the registry of built-in entities
func DefaultEntityRegistry() *EntityRegistry {
	r, err := NewEntityRegistry(DefaultEntitySchemas()...)
	if err != nil {
		panic("built-in entity schemas are invalid: " + err.Error())
	}
	return r
}
