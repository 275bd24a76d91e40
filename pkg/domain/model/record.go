package model

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// RecordID identifies a master-data record
type RecordID string

// NewRecordID returns a random record ID
func NewRecordID() RecordID {
	return RecordID(uuid.NewString())
}

func (id RecordID) String() string {
	return string(id)
}

// Record is one row of a schema-driven master-data entity such as a country,
// warehouse or product
type Record struct {
	ID        RecordID         `json:"id"`
	Entity    types.EntityName `json:"entity"`
	Values    map[string]any   `json:"values"`
	CreatedBy string           `json:"created_by,omitempty"`
	UpdatedBy string           `json:"updated_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Clone returns a copy whose Values map can be modified independently
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Values = maps.Clone(r.Values)
	if c.Values == nil {
		c.Values = map[string]any{}
	}
	return &c
}

// Row flattens the record into a table row. Metadata keys take precedence
// over values of the same name.
func (r *Record) Row() table.Row {
	row := make(table.Row, len(r.Values)+5)
	for k, v := range r.Values {
		row[k] = v
	}
	row["id"] = r.ID.String()
	row["created_by"] = r.CreatedBy
	row["updated_by"] = r.UpdatedBy
	row["created_at"] = r.CreatedAt
	row["updated_at"] = r.UpdatedAt
	return row
}

// Value returns the value of key as text, or "" when it is absent
func (r *Record) Value(key string) string {
	return table.Stringify(r.Values[key])
}

// Label returns the display label of the record using labelKey, falling back
// to the ID
func (r *Record) Label(labelKey string) string {
	if labelKey == "" {
		labelKey = "name"
	}
	if v := r.Value(labelKey); v != "" {
		return v
	}
	return r.ID.String()
}
