package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

func rec(entity types.EntityName, id string, values map[string]any) *model.Record {
	return &model.Record{ID: model.RecordID(id), Entity: entity, Values: values}
}

func TestDefaultEntityRegistry(t *testing.T) {
	r := model.DefaultEntityRegistry()
	names := []types.EntityName{}
	for _, s := range r.List() {
		names = append(names, s.Name)
	}
	gt.Value(t, names).Equal([]types.EntityName{
		"countries", "states", "cities", "zones", "territories",
		"warehouses", "categories", "products", "presentations",
	})

	_, err := r.Get("unicorns")
	gt.Error(t, err).Is(model.ErrUnknownEntity)

	gt.Value(t, r.Dependents("countries")).Equal([]types.EntityName{"states", "cities", "warehouses"})
}

func TestEntityRegistry_RejectsUnknownReference(t *testing.T) {
	_, err := model.NewEntityRegistry(&model.EntitySchema{
		Name:  "stores",
		Label: "Stores",
		Fields: []model.FieldSchema{
			{Key: "zone_id", Label: "Zone", Type: types.FieldTypeSelect, OptionsFrom: "zones"},
		},
		Columns: []model.ColumnSchema{{Key: "zone_id", Header: "Zone"}},
	})
	gt.Error(t, err).Is(model.ErrUnknownEntity)
}

func TestEntityRegistry_Override(t *testing.T) {
	base := model.DefaultEntityRegistry()
	next, err := base.Override(&model.EntitySchema{
		Name:    "zones",
		Label:   "Sales Zones",
		Fields:  []model.FieldSchema{{Key: "name", Label: "Name", Type: types.FieldTypeText, Required: true}},
		Columns: []model.ColumnSchema{{Key: "name", Header: "Name", Sortable: true}},
	})
	gt.NoError(t, err).Required()

	s, err := next.Get("zones")
	gt.NoError(t, err).Required()
	gt.Value(t, s.Label).Equal("Sales Zones")

	orig, err := base.Get("zones")
	gt.NoError(t, err).Required()
	gt.Value(t, orig.Label).Equal("Zones")
	gt.Number(t, len(next.List())).Equal(len(base.List()))
}

func TestEntitySchema_Validate(t *testing.T) {
	valid := func() *model.EntitySchema {
		return &model.EntitySchema{
			Name:  "zones",
			Label: "Zones",
			Fields: []model.FieldSchema{
				{Key: "name", Label: "Name", Type: types.FieldTypeText},
				{Key: "code", Label: "Code", Type: types.FieldTypeText},
			},
			Columns: []model.ColumnSchema{{Key: "name", Header: "Name"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(s *model.EntitySchema)
		ok     bool
	}{
		{name: "valid", mutate: func(*model.EntitySchema) {}, ok: true},
		{name: "bad name", mutate: func(s *model.EntitySchema) { s.Name = "Zones" }},
		{name: "no label", mutate: func(s *model.EntitySchema) { s.Label = "" }},
		{name: "duplicate field", mutate: func(s *model.EntitySchema) { s.Fields[1].Key = "name" }},
		{name: "bad type", mutate: func(s *model.EntitySchema) { s.Fields[0].Type = "color" }},
		{name: "options_from on text", mutate: func(s *model.EntitySchema) { s.Fields[0].OptionsFrom = "zones" }},
		{name: "unknown filter_by", mutate: func(s *model.EntitySchema) { s.Fields[0].FilterBy = "country_id" }},
		{name: "no columns", mutate: func(s *model.EntitySchema) { s.Columns = nil }},
		{name: "duplicate column", mutate: func(s *model.EntitySchema) {
			s.Columns = append(s.Columns, model.ColumnSchema{Key: "name", Header: "Again"})
		}},
		{name: "unknown list filter", mutate: func(s *model.EntitySchema) { s.ListFilters = []string{"zone_id"} }},
		{name: "count_of without count_by", mutate: func(s *model.EntitySchema) {
			s.Columns = append(s.Columns, model.ColumnSchema{Key: "n", Header: "N", CountOf: "zones"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.ok {
				gt.NoError(t, err)
			} else {
				gt.Value(t, err).NotNil()
			}
		})
	}
}

func TestEntitySchema_DependentDropdown(t *testing.T) {
	s, err := model.DefaultEntityRegistry().Get("cities")
	gt.NoError(t, err).Required()

	refs := map[types.EntityName][]*model.Record{
		"countries": {
			rec("countries", "mx", map[string]any{"name": "Mexico"}),
			rec("countries", "us", map[string]any{"name": "United States"}),
		},
		"states": {
			rec("states", "jal", map[string]any{"name": "Jalisco", "country_id": "mx"}),
			rec("states", "nl", map[string]any{"name": "Nuevo Leon", "country_id": "mx"}),
			rec("states", "tx", map[string]any{"name": "Texas", "country_id": "us"}),
		},
	}

	m, err := form.NewModal("City", types.FormModeCreate, s.FormFields(refs))
	gt.NoError(t, err).Required()
	m.Open(nil)

	options := func(key string) []form.Option {
		for _, c := range m.Controls() {
			if c.Key == key {
				return c.Options
			}
		}
		return nil
	}

	gt.Array(t, options("country_id")).Length(3)
	// Only the placeholder until a country is chosen
	gt.Array(t, options("state_id")).Length(1)

	gt.NoError(t, m.Set("country_id", "mx"))
	gt.Value(t, options("state_id")).Equal([]form.Option{
		{Value: "", Label: "Select State"},
		{Value: "jal", Label: "Jalisco"},
		{Value: "nl", Label: "Nuevo Leon"},
	})

	gt.NoError(t, m.Set("name", "Guadalajara"))
	gt.NoError(t, m.Set("state_id", "tx"))
	err = m.Submit(func(form.State) error { return nil })
	gt.Value(t, err).NotNil()

	gt.NoError(t, m.Set("state_id", "jal"))
	gt.NoError(t, m.Submit(func(form.State) error { return nil }))
}

func TestEntitySchema_TableColumns(t *testing.T) {
	s, err := model.DefaultEntityRegistry().Get("states")
	gt.NoError(t, err).Required()

	refs := map[types.EntityName][]*model.Record{
		"countries": {rec("countries", "mx", map[string]any{"name": "Mexico"})},
	}
	tbl, err := table.New(s.TableColumns(refs))
	gt.NoError(t, err).Required()
	tbl.SetData([]table.Row{
		rec("states", "jal", map[string]any{"name": "Jalisco", "country_id": "mx", "active": true}).Row(),
		rec("states", "zz", map[string]any{"name": "Nowhere", "country_id": "xx", "active": false}).Row(),
	})

	view := tbl.View()
	gt.Value(t, view.Rows[0].Cells[1].Text).Equal("Mexico")
	gt.Value(t, view.Rows[0].Cells[2].Text).Equal("Active")
	gt.Value(t, view.Rows[1].Cells[1].Text).Equal("xx")
	gt.Value(t, view.Rows[1].Cells[2].Text).Equal("Inactive")
}

func TestEntitySchema_EnrichRows(t *testing.T) {
	s, err := model.DefaultEntityRegistry().Get("categories")
	gt.NoError(t, err).Required()
	gt.Value(t, s.References()).Equal([]types.EntityName{"products"})

	rows := []table.Row{
		rec("categories", "c1", map[string]any{"name": "Drinks"}).Row(),
		rec("categories", "c2", map[string]any{"name": "Snacks"}).Row(),
	}
	s.EnrichRows(rows, map[types.EntityName][]*model.Record{
		"products": {
			rec("products", "p1", map[string]any{"category_id": "c1"}),
			rec("products", "p2", map[string]any{"category_id": "c1"}),
		},
	})
	gt.Value(t, rows[0]["product_count"]).Equal(any(2))
	gt.Value(t, rows[1]["product_count"]).Equal(any(0))
}

func TestRecord_RowAndClone(t *testing.T) {
	r := rec("zones", "z1", map[string]any{"name": "North", "id": "spoofed"})
	r.CreatedBy = "u1"

	row := r.Row()
	gt.Value(t, row.ID()).Equal("z1")
	gt.Value(t, row["name"]).Equal(any("North"))
	gt.Value(t, row["created_by"]).Equal(any("u1"))

	c := r.Clone()
	c.Values["name"] = "South"
	gt.Value(t, r.Values["name"]).Equal(any("North"))
	gt.Value(t, r.Label("")).Equal("North")
	gt.Value(t, rec("zones", "z2", nil).Label("name")).Equal("z2")
}
