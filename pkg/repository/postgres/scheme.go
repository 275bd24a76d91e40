package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

const schemeColumns = "id, name, description, start_date, end_date, active, claims_generated, claims_approved, total_payout_cents, created_by, updated_by, created_at, updated_at"

type schemeRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Description      string    `db:"description"`
	StartDate        string    `db:"start_date"`
	EndDate          string    `db:"end_date"`
	Active           bool      `db:"active"`
	ClaimsGenerated  int64     `db:"claims_generated"`
	ClaimsApproved   int64     `db:"claims_approved"`
	TotalPayoutCents int64     `db:"total_payout_cents"`
	CreatedBy        string    `db:"created_by"`
	UpdatedBy        string    `db:"updated_by"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r *schemeRow) toModel() *model.Scheme {
	return &model.Scheme{
		ID:          model.SchemeID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Active:      r.Active,
		Totals: model.SchemeTotals{
			ClaimsGenerated: r.ClaimsGenerated,
			ClaimsApproved:  r.ClaimsApproved,
			TotalPayout:     model.Money(r.TotalPayoutCents),
		},
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.UpdatedBy,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type schemeRepository struct {
	db *sqlx.DB
}

func (r *schemeRepository) Create(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error) {
	created := scheme.Clone()
	if created.ID == "" {
		created.ID = model.NewSchemeID()
	}
	created.Totals = model.SchemeTotals{}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO schemes ("+schemeColumns+") VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, $7, $8, $9, $10)",
		created.ID.String(), created.Name, created.Description, created.StartDate, created.EndDate, created.Active,
		created.CreatedBy, created.UpdatedBy, now, now)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return nil, goerr.Wrap(err, "scheme already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create scheme", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *schemeRepository) Get(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	var row schemeRow
	if err := r.db.GetContext(ctx, &row, "SELECT "+schemeColumns+" FROM schemes WHERE id = $1", id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get scheme", goerr.V("id", id))
	}
	return row.toModel(), nil
}

func (r *schemeRepository) List(ctx context.Context) ([]*model.Scheme, error) {
	var rows []schemeRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+schemeColumns+" FROM schemes ORDER BY created_at, id"); err != nil {
		return nil, goerr.Wrap(err, "failed to list schemes")
	}

	schemes := make([]*model.Scheme, 0, len(rows))
	for i := range rows {
		schemes = append(schemes, rows[i].toModel())
	}
	return schemes, nil
}

func (r *schemeRepository) Update(ctx context.Context, scheme *model.Scheme) (*model.Scheme, error) {
	var row schemeRow
	err := r.db.GetContext(ctx, &row,
		"UPDATE schemes SET name = $2, description = $3, start_date = $4, end_date = $5, active = $6, updated_by = $7, updated_at = $8 WHERE id = $1 RETURNING "+schemeColumns,
		scheme.ID.String(), scheme.Name, scheme.Description, scheme.StartDate, scheme.EndDate, scheme.Active,
		scheme.UpdatedBy, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", scheme.ID))
		}
		return nil, goerr.Wrap(err, "failed to update scheme", goerr.V("id", scheme.ID))
	}
	return row.toModel(), nil
}

func (r *schemeRepository) Delete(ctx context.Context, id model.SchemeID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM schemes WHERE id = $1", id.String())
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return goerr.Wrap(interfaces.ErrSchemeHasClaim, "cannot delete scheme", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to delete scheme", goerr.V("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows")
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
	}
	return nil
}

func (r *schemeRepository) RecomputeTotals(ctx context.Context, id model.SchemeID) (*model.Scheme, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer rollback(tx)

	var row schemeRow
	if err := tx.GetContext(ctx, &row, "SELECT "+schemeColumns+" FROM schemes WHERE id = $1 FOR UPDATE", id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to lock scheme", goerr.V("id", id))
	}

	var claimRows []claimRow
	if err := tx.SelectContext(ctx, &claimRows, "SELECT "+claimColumns+" FROM expense_claims WHERE scheme_id = $1", id.String()); err != nil {
		return nil, goerr.Wrap(err, "failed to list scheme claims", goerr.V("id", id))
	}
	claims, err := claimsFromRows(claimRows)
	if err != nil {
		return nil, err
	}

	s := row.toModel()
	s.Totals = model.ComputeSchemeTotals(claims)
	if _, err := tx.ExecContext(ctx,
		"UPDATE schemes SET claims_generated = $2, claims_approved = $3, total_payout_cents = $4 WHERE id = $1",
		id.String(), s.Totals.ClaimsGenerated, s.Totals.ClaimsApproved, int64(s.Totals.TotalPayout)); err != nil {
		return nil, goerr.Wrap(err, "failed to store scheme totals", goerr.V("id", id))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit scheme totals", goerr.V("id", id))
	}
	return s, nil
}
