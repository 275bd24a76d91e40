package table_test

import (
	"math/rand/v2"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
)

func TestVisibleColumns_NeverEmpty(t *testing.T) {
	columns := productColumns()
	keys := []string{"name", "price", "category.name", "actions", "unknown"}

	for seed := uint64(0); seed < 20; seed++ {
		r := rand.New(rand.NewPCG(seed, seed))
		v := table.NewVisibleColumns(columns, nil)
		for range 200 {
			v.Toggle(keys[r.IntN(len(keys))])
			gt.Bool(t, v.Len() >= 1).True()
		}
	}
}

func TestVisibleColumns_LastColumnIsKept(t *testing.T) {
	v := table.NewVisibleColumns(productColumns(), []string{"name"})
	gt.Value(t, v.Keys()).Equal([]string{"name"})

	gt.Bool(t, v.Toggle("name")).False()
	gt.Value(t, v.Keys()).Equal([]string{"name"})

	gt.Bool(t, v.Toggle("price")).True()
	gt.Bool(t, v.Toggle("name")).True()
	gt.Value(t, v.Keys()).Equal([]string{"price"})
}

func TestVisibleColumns_ShowAll(t *testing.T) {
	v := table.NewVisibleColumns(productColumns(), []string{"price"})
	v.ShowAll()
	gt.Value(t, v.Keys()).Equal([]string{"name", "price", "category.name", "actions"})
}

func TestVisibleColumns_InitialUnknownShowsAll(t *testing.T) {
	v := table.NewVisibleColumns(productColumns(), []string{"nope"})
	gt.Number(t, v.Len()).Equal(4)
}

func TestVisibleColumns_SetAndApply(t *testing.T) {
	columns := productColumns()
	v := table.NewVisibleColumns(columns, nil)

	v.Set([]string{"price", "name"})
	applied := v.Apply(columns)
	gt.Array(t, applied).Length(2)
	gt.Value(t, applied[0].Key).Equal("name")
	gt.Value(t, applied[1].Key).Equal("price")

	v.Set([]string{"unknown"})
	gt.Value(t, v.Keys()).Equal([]string{"name", "price"})
}
