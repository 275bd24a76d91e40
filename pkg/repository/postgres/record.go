package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

const recordColumns = "entity, id, data, created_by, updated_by, created_at, updated_at"

type recordRow struct {
	Entity    string    `db:"entity"`
	ID        string    `db:"id"`
	Data      []byte    `db:"data"`
	CreatedBy string    `db:"created_by"`
	UpdatedBy string    `db:"updated_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *recordRow) toModel() (*model.Record, error) {
	values := map[string]any{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &values); err != nil {
			return nil, goerr.Wrap(err, "failed to decode record values", goerr.V("id", r.ID))
		}
	}
	return &model.Record{
		ID:        model.RecordID(r.ID),
		Entity:    types.EntityName(r.Entity),
		Values:    values,
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.UpdatedBy,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}, nil
}

type recordRepository struct {
	db *sqlx.DB
}

func (r *recordRepository) List(ctx context.Context, entity types.EntityName, opts ...interfaces.ListOption) ([]*model.Record, error) {
	cfg := interfaces.BuildListConfig(opts...)

	var sb strings.Builder
	sb.WriteString("SELECT " + recordColumns + " FROM records WHERE entity = $1")
	args := []any{entity.String()}
	for _, field := range cfg.Fields() {
		if field == "id" {
			args = append(args, cfg.Equals()[field])
			sb.WriteString(" AND id = $" + strconv.Itoa(len(args)))
			continue
		}
		args = append(args, field, cfg.Equals()[field])
		sb.WriteString(" AND data->>$" + strconv.Itoa(len(args)-1) + " = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY created_at, id")

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, goerr.Wrap(err, "failed to list records", goerr.V("entity", entity))
	}

	records := make([]*model.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *recordRepository) Get(ctx context.Context, entity types.EntityName, id model.RecordID) (*model.Record, error) {
	var row recordRow
	err := r.db.GetContext(ctx, &row, "SELECT "+recordColumns+" FROM records WHERE entity = $1 AND id = $2", entity.String(), id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", entity), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get record", goerr.V("entity", entity), goerr.V("id", id))
	}
	return row.toModel()
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) (*model.Record, error) {
	created := record.Clone()
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	data, err := json.Marshal(created.Values)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode record values")
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO records ("+recordColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		created.Entity.String(), created.ID.String(), data, created.CreatedBy, created.UpdatedBy, now, now)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return nil, goerr.Wrap(err, "record already exists", goerr.V("entity", created.Entity), goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create record", goerr.V("entity", created.Entity))
	}
	return created, nil
}

func (r *recordRepository) Update(ctx context.Context, record *model.Record) (*model.Record, error) {
	data, err := json.Marshal(record.Values)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode record values")
	}

	var row recordRow
	err = r.db.GetContext(ctx, &row,
		"UPDATE records SET data = $3, updated_by = $4, updated_at = $5 WHERE entity = $1 AND id = $2 RETURNING "+recordColumns,
		record.Entity.String(), record.ID.String(), data, record.UpdatedBy, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", record.Entity), goerr.V("id", record.ID))
		}
		return nil, goerr.Wrap(err, "failed to update record", goerr.V("id", record.ID))
	}
	return row.toModel()
}

func (r *recordRepository) Delete(ctx context.Context, entity types.EntityName, id model.RecordID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE entity = $1 AND id = $2", entity.String(), id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete record", goerr.V("entity", entity), goerr.V("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "record not found", goerr.V("entity", entity), goerr.V("id", id))
	}
	return nil
}
