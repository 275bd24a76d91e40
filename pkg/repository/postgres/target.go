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
)

const targetColumns = "id, user_id, territory_id, period, lines, created_by, updated_by, created_at, updated_at"

var targetFilterColumns = map[string]string{
	"user_id":      "user_id",
	"territory_id": "territory_id",
	"period":       "period",
}

type targetRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	TerritoryID string    `db:"territory_id"`
	Period      string    `db:"period"`
	Lines       []byte    `db:"lines"`
	CreatedBy   string    `db:"created_by"`
	UpdatedBy   string    `db:"updated_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *targetRow) toModel() (*model.Target, error) {
	var lines []model.TargetLine
	if len(r.Lines) > 0 {
		if err := json.Unmarshal(r.Lines, &lines); err != nil {
			return nil, goerr.Wrap(err, "failed to decode target lines", goerr.V("id", r.ID))
		}
	}
	return &model.Target{
		ID:          model.TargetID(r.ID),
		UserID:      r.UserID,
		TerritoryID: r.TerritoryID,
		Period:      r.Period,
		Lines:       lines,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

func encodeLines(lines []model.TargetLine) ([]byte, error) {
	if lines == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode target lines")
	}
	return data, nil
}

type targetRepository struct {
	db *sqlx.DB
}

func (r *targetRepository) Create(ctx context.Context, target *model.Target) (*model.Target, error) {
	created := target.Clone()
	if created.ID == "" {
		created.ID = model.NewTargetID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	lines, err := encodeLines(created.Lines)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO targets ("+targetColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		created.ID.String(), created.UserID, created.TerritoryID, created.Period, lines,
		created.CreatedBy, created.UpdatedBy, now, now)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create target", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *targetRepository) Get(ctx context.Context, id model.TargetID) (*model.Target, error) {
	var row targetRow
	if err := r.db.GetContext(ctx, &row, "SELECT "+targetColumns+" FROM targets WHERE id = $1", id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get target", goerr.V("id", id))
	}
	return row.toModel()
}

func (r *targetRepository) List(ctx context.Context, opts ...interfaces.ListOption) ([]*model.Target, error) {
	cfg := interfaces.BuildListConfig(opts...)

	var sb strings.Builder
	sb.WriteString("SELECT " + targetColumns + " FROM targets")
	var args []any
	for i, field := range cfg.Fields() {
		column, ok := targetFilterColumns[field]
		if !ok {
			return nil, goerr.New("unsupported target filter", goerr.V("field", field))
		}
		args = append(args, cfg.Equals()[field])
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(column + " = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY period DESC, id")

	var rows []targetRow
	if err := r.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, goerr.Wrap(err, "failed to list targets")
	}

	targets := make([]*model.Target, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (r *targetRepository) Update(ctx context.Context, target *model.Target) (*model.Target, error) {
	lines, err := encodeLines(target.Lines)
	if err != nil {
		return nil, err
	}

	var row targetRow
	err = r.db.GetContext(ctx, &row,
		"UPDATE targets SET user_id = $2, territory_id = $3, period = $4, lines = $5, updated_by = $6, updated_at = $7 WHERE id = $1 RETURNING "+targetColumns,
		target.ID.String(), target.UserID, target.TerritoryID, target.Period, lines, target.UpdatedBy, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", target.ID))
		}
		return nil, goerr.Wrap(err, "failed to update target", goerr.V("id", target.ID))
	}
	return row.toModel()
}

func (r *targetRepository) Delete(ctx context.Context, id model.TargetID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM targets WHERE id = $1", id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete target", goerr.V("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "target not found", goerr.V("id", id))
	}
	return nil
}
