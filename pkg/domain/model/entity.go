package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// FieldSchema declares one editable field of an entity. A select field may
// take its choices from another entity and narrow them by the value of a
// sibling field, which produces a dependent dropdown.
type FieldSchema struct {
	Key         types.FieldKey  `json:"key"`
	Label       string          `json:"label"`
	Type        types.FieldType `json:"type"`
	Required    bool            `json:"required"`
	Options     []form.Option   `json:"options,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`

	// OptionsFrom names the entity whose records are the choices
	OptionsFrom types.EntityName `json:"options_from,omitempty"`
	// OptionLabel is the value key used as choice label. Defaults to "name".
	OptionLabel string `json:"option_label,omitempty"`
	// FilterBy is the sibling field whose current value narrows the choices
	FilterBy types.FieldKey `json:"filter_by,omitempty"`
	// FilterField is the key on referenced records compared with FilterBy.
	// Defaults to FilterBy.
	FilterField string `json:"filter_field,omitempty"`
}

// ColumnSchema declares one table column of an entity
type ColumnSchema struct {
	Key       string `json:"key"`
	Header    string `json:"header"`
	Sortable  bool   `json:"sortable"`
	ClassName string `json:"class_name,omitempty"`
	// Badge renders the value as a status badge label
	Badge bool `json:"badge,omitempty"`
	// CountOf makes the column an aggregate: the number of CountOf records
	// whose CountBy value equals the row ID
	CountOf types.EntityName `json:"count_of,omitempty"`
	CountBy string           `json:"count_by,omitempty"`
}

// EntitySchema describes a master-data entity: its form fields, its table
// columns and the other cached lists a change to it makes stale
type EntitySchema struct {
	Name        types.EntityName   `json:"name"`
	Label       string             `json:"label"`
	Fields      []FieldSchema      `json:"fields"`
	Columns     []ColumnSchema     `json:"columns"`
	Invalidates []types.EntityName `json:"invalidates,omitempty"`
	// ListFilters are the field keys accepted as equality filters on list queries
	ListFilters []string `json:"list_filters,omitempty"`
}

// Validate checks the schema for consistency
func (s *EntitySchema) Validate() error {
	if err := s.Name.Validate(); err != nil {
		return goerr.Wrap(err, "invalid entity name")
	}
	if s.Label == "" {
		return goerr.New("entity label is required", goerr.V(EntityKey, s.Name))
	}
	if len(s.Fields) == 0 {
		return goerr.New("entity requires at least one field", goerr.V(EntityKey, s.Name))
	}

	keys := make(map[types.FieldKey]bool, len(s.Fields))
	for _, f := range s.Fields {
		if err := f.Key.Validate(); err != nil {
			return goerr.Wrap(err, "invalid field key", goerr.V(EntityKey, s.Name))
		}
		if keys[f.Key] {
			return goerr.New("duplicate field key", goerr.V(EntityKey, s.Name), goerr.V(FieldKeyKey, f.Key))
		}
		keys[f.Key] = true
		if !f.Type.IsValid() {
			return goerr.New("invalid field type", goerr.V(EntityKey, s.Name), goerr.V(FieldKeyKey, f.Key), goerr.V("type", f.Type))
		}
		if f.OptionsFrom != "" && f.Type != types.FieldTypeSelect {
			return goerr.New("options_from requires a select field", goerr.V(EntityKey, s.Name), goerr.V(FieldKeyKey, f.Key))
		}
	}

	for _, f := range s.Fields {
		if f.FilterBy != "" && !keys[f.FilterBy] {
			return goerr.New("filter_by references an unknown field", goerr.V(EntityKey, s.Name), goerr.V(FieldKeyKey, f.Key), goerr.V("filter_by", f.FilterBy))
		}
	}

	for _, c := range s.Columns {
		if (c.CountOf == "") != (c.CountBy == "") {
			return goerr.New("count_of and count_by must be set together", goerr.V(EntityKey, s.Name), goerr.V("column", c.Key))
		}
	}

	if len(s.Columns) == 0 {
		return goerr.New("entity requires at least one column", goerr.V(EntityKey, s.Name))
	}
	if err := tableColumnsValid(s.Columns); err != nil {
		return goerr.Wrap(err, "invalid columns", goerr.V(EntityKey, s.Name))
	}

	for _, f := range s.ListFilters {
		if !keys[types.FieldKey(f)] {
			return goerr.New("list filter references an unknown field", goerr.V(EntityKey, s.Name), goerr.V("filter", f))
		}
	}
	return nil
}

func tableColumnsValid(columns []ColumnSchema) error {
	_, err := table.New(toTableColumns(columns))
	return err
}

// Field returns the field with key
func (s *EntitySchema) Field(key types.FieldKey) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// References returns the entities whose records feed select fields
func (s *EntitySchema) References() []types.EntityName {
	var refs []types.EntityName
	for _, f := range s.Fields {
		if f.OptionsFrom != "" && !slices.Contains(refs, f.OptionsFrom) {
			refs = append(refs, f.OptionsFrom)
		}
	}
	for _, c := range s.Columns {
		if c.CountOf != "" && !slices.Contains(refs, c.CountOf) {
			refs = append(refs, c.CountOf)
		}
	}
	return refs
}

// EnrichRows fills aggregate columns of rows from refs. Rows are modified in place.
func (s *EntitySchema) EnrichRows(rows []table.Row, refs map[types.EntityName][]*Record) {
	for _, c := range s.Columns {
		if c.CountOf == "" {
			continue
		}
		counts := make(map[string]int)
		for _, r := range refs[c.CountOf] {
			counts[r.Value(c.CountBy)]++
		}
		for _, row := range rows {
			row[c.Key] = counts[row.ID()]
		}
	}
}

// AllowsFilter reports whether key may be used as a list equality filter
func (s *EntitySchema) AllowsFilter(key string) bool {
	return key == "id" || slices.Contains(s.ListFilters, key)
}

// FormFields builds the modal fields. refs holds the records of every
// referenced entity, keyed by entity name.
func (s *EntitySchema) FormFields(refs map[types.EntityName][]*Record) []form.Field {
	fields := make([]form.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, f.FormField(refs[f.OptionsFrom]))
	}
	return fields
}

// FormField converts the schema to a modal field. For referenced selects the
// choices are computed from records, narrowed by the FilterBy sibling.
func (f FieldSchema) FormField(records []*Record) form.Field {
	ff := form.Field{
		Key:         f.Key.String(),
		Label:       f.Label,
		Type:        f.Type,
		Required:    f.Required,
		Options:     f.Options,
		Placeholder: f.Placeholder,
		DependsOn:   f.FilterBy.String(),
	}
	if f.OptionsFrom == "" {
		return ff
	}

	labelKey := f.OptionLabel
	filterBy := f.FilterBy.String()
	filterField := f.FilterField
	if filterField == "" {
		filterField = filterBy
	}

	ff.GetOptions = func(state form.State) []form.Option {
		var want string
		if filterBy != "" {
			want = state.Text(filterBy)
			if want == "" {
				return []form.Option{}
			}
		}
		options := make([]form.Option, 0, len(records))
		for _, r := range records {
			if filterBy != "" && r.Value(filterField) != want {
				continue
			}
			options = append(options, form.Option{Value: r.ID.String(), Label: r.Label(labelKey)})
		}
		return options
	}
	return ff
}

// TableColumns builds the table columns. refs resolve referenced IDs to labels.
func (s *EntitySchema) TableColumns(refs map[types.EntityName][]*Record) []table.Column {
	columns := toTableColumns(s.Columns)
	for i, c := range s.Columns {
		f, ok := s.Field(types.FieldKey(c.Key))
		switch {
		case c.Badge:
			key := c.Key
			isSwitch := ok && f.Type == types.FieldTypeSwitch
			columns[i].Render = func(row table.Row) string {
				v := table.Lookup(row, key)
				if isSwitch {
					b, _ := v.(bool)
					return BoolBadge(b).Label
				}
				return Badge(table.Stringify(v)).Label
			}
		case ok && f.OptionsFrom != "":
			key := c.Key
			labels := make(map[string]string, len(refs[f.OptionsFrom]))
			for _, r := range refs[f.OptionsFrom] {
				labels[r.ID.String()] = r.Label(f.OptionLabel)
			}
			columns[i].Render = func(row table.Row) string {
				id := table.Stringify(table.Lookup(row, key))
				if label, ok := labels[id]; ok {
					return label
				}
				return id
			}
		case ok && f.Type == types.FieldTypeSelect && len(f.Options) > 0:
			key := c.Key
			labels := make(map[string]string, len(f.Options))
			for _, o := range f.Options {
				labels[o.Value] = o.Label
			}
			columns[i].Render = func(row table.Row) string {
				v := table.Stringify(table.Lookup(row, key))
				if label, ok := labels[v]; ok {
					return label
				}
				return v
			}
		}
	}
	return columns
}

func toTableColumns(columns []ColumnSchema) []table.Column {
	out := make([]table.Column, len(columns))
	for i, c := range columns {
		out[i] = table.Column{
			Key:       c.Key,
			Header:    c.Header,
			Sortable:  c.Sortable,
			ClassName: c.ClassName,
		}
	}
	return out
}
