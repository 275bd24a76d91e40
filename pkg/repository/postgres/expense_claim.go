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

const claimColumns = "id, scheme_id, user_id, type, claim_date, amount_cents, description, status, attachments, created_by, updated_by, created_at, updated_at"

var claimFilterColumns = map[string]string{
	"scheme_id": "scheme_id",
	"user_id":   "user_id",
	"status":    "status",
	"type":      "type",
	"date":      "claim_date",
}

type claimRow struct {
	ID          string    `db:"id"`
	SchemeID    string    `db:"scheme_id"`
	UserID      string    `db:"user_id"`
	Type        string    `db:"type"`
	ClaimDate   string    `db:"claim_date"`
	AmountCents int64     `db:"amount_cents"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	Attachments []byte    `db:"attachments"`
	CreatedBy   string    `db:"created_by"`
	UpdatedBy   string    `db:"updated_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *claimRow) toModel() (*model.ExpenseClaim, error) {
	var attachments []string
	if len(r.Attachments) > 0 {
		if err := json.Unmarshal(r.Attachments, &attachments); err != nil {
			return nil, goerr.Wrap(err, "failed to decode attachments", goerr.V("id", r.ID))
		}
	}
	return &model.ExpenseClaim{
		ID:          model.ExpenseClaimID(r.ID),
		SchemeID:    model.SchemeID(r.SchemeID),
		UserID:      r.UserID,
		Type:        r.Type,
		Date:        r.ClaimDate,
		Amount:      model.Money(r.AmountCents),
		Description: r.Description,
		Status:      types.ClaimStatus(r.Status),
		Attachments: attachments,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

// applyDelta increments scheme totals inside tx and reports whether the
// scheme exists
func applyDelta(ctx context.Context, tx *sqlx.Tx, id model.SchemeID, delta model.SchemeTotals, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE schemes SET claims_generated = claims_generated + $2, claims_approved = claims_approved + $3, total_payout_cents = total_payout_cents + $4, updated_at = $5 WHERE id = $1`,
		id.String(), delta.ClaimsGenerated, delta.ClaimsApproved, int64(delta.TotalPayout), now)
	if err != nil {
		return false, goerr.Wrap(err, "failed to update scheme totals", goerr.V("scheme_id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to get affected rows")
	}
	return n > 0, nil
}

type expenseClaimRepository struct {
	db *sqlx.DB
}

func (r *expenseClaimRepository) Create(ctx context.Context, claim *model.ExpenseClaim) (*model.ExpenseClaim, error) {
	created := claim.Clone()
	if created.ID == "" {
		created.ID = model.NewExpenseClaimID()
	}
	created.Status = created.Status.Normalize()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now
	key := created.Key()

	attachments, err := json.Marshal(created.Attachments)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode attachments")
	}
	if created.Attachments == nil {
		attachments = []byte("[]")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer rollback(tx)

	// The scheme row lock serializes concurrent claims of one scheme
	found, err := applyDelta(ctx, tx, created.SchemeID, model.Contribution(created.Status, created.Amount), now)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, goerr.Wrap(ErrNotFound, "scheme not found", goerr.V("scheme_id", created.SchemeID))
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expense_claims ("+claimColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)",
		created.ID.String(), created.SchemeID.String(), created.UserID, created.Type, created.Date,
		int64(created.Amount), created.Description, created.Status.String(), attachments,
		created.CreatedBy, created.UpdatedBy, now, now)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return nil, goerr.Wrap(interfaces.ErrDuplicateClaim, "claim already exists",
				goerr.V("user_id", key.UserID),
				goerr.V("type", key.Type),
				goerr.V("date", key.Date),
				goerr.V("amount", key.Amount))
		}
		return nil, goerr.Wrap(err, "failed to insert expense claim", goerr.V("id", created.ID))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit expense claim", goerr.V("id", created.ID))
	}
	return created, nil
}

func (r *expenseClaimRepository) Get(ctx context.Context, id model.ExpenseClaimID) (*model.ExpenseClaim, error) {
	var row claimRow
	if err := r.db.GetContext(ctx, &row, "SELECT "+claimColumns+" FROM expense_claims WHERE id = $1", id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get expense claim", goerr.V("id", id))
	}
	return row.toModel()
}

func (r *expenseClaimRepository) List(ctx context.Context, opts ...interfaces.ListOption) ([]*model.ExpenseClaim, error) {
	cfg := interfaces.BuildListConfig(opts...)

	var sb strings.Builder
	sb.WriteString("SELECT " + claimColumns + " FROM expense_claims")
	var args []any
	for i, field := range cfg.Fields() {
		column, ok := claimFilterColumns[field]
		if !ok {
			return nil, goerr.New("unsupported claim filter", goerr.V("field", field))
		}
		args = append(args, cfg.Equals()[field])
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(column + " = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY created_at, id")

	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, goerr.Wrap(err, "failed to list expense claims")
	}
	return claimsFromRows(rows)
}

func claimsFromRows(rows []claimRow) ([]*model.ExpenseClaim, error) {
	claims := make([]*model.ExpenseClaim, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}

func (r *expenseClaimRepository) FindByKey(ctx context.Context, key model.ClaimKey) (*model.ExpenseClaim, error) {
	var row claimRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+claimColumns+" FROM expense_claims WHERE user_id = $1 AND type = $2 AND claim_date = $3 AND amount_cents = $4",
		key.UserID, key.Type, key.Date, int64(key.Amount))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to find expense claim by key")
	}
	return row.toModel()
}

func (r *expenseClaimRepository) lockClaim(ctx context.Context, tx *sqlx.Tx, id model.ExpenseClaimID) (*model.ExpenseClaim, error) {
	var row claimRow
	if err := tx.GetContext(ctx, &row, "SELECT "+claimColumns+" FROM expense_claims WHERE id = $1 FOR UPDATE", id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "expense claim not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to lock expense claim", goerr.V("id", id))
	}
	return row.toModel()
}

func (r *expenseClaimRepository) TransitionStatus(ctx context.Context, id model.ExpenseClaimID, to types.ClaimStatus, by string) (*model.ExpenseClaim, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer rollback(tx)

	c, err := r.lockClaim(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	from := c.Status.Normalize()
	if !from.CanTransitionTo(to) {
		return nil, goerr.Wrap(interfaces.ErrInvalidStatus, "cannot change claim status",
			goerr.V("id", id), goerr.V("from", from), goerr.V("to", to))
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE expense_claims SET status = $2, updated_by = $3, updated_at = $4 WHERE id = $1",
		id.String(), to.String(), by, now); err != nil {
		return nil, goerr.Wrap(err, "failed to update expense claim status", goerr.V("id", id))
	}

	if delta := model.TotalsDelta(from, to, c.Amount); !delta.IsZero() {
		if _, err := applyDelta(ctx, tx, c.SchemeID, delta, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit status change", goerr.V("id", id))
	}

	c.Status = to
	c.UpdatedBy = by
	c.UpdatedAt = now
	return c, nil
}

func (r *expenseClaimRepository) Delete(ctx context.Context, id model.ExpenseClaimID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer rollback(tx)

	c, err := r.lockClaim(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_claims WHERE id = $1", id.String()); err != nil {
		return goerr.Wrap(err, "failed to delete expense claim", goerr.V("id", id))
	}

	delta := model.Contribution(c.Status.Normalize(), c.Amount).Neg()
	if _, err := applyDelta(ctx, tx, c.SchemeID, delta, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit expense claim deletion", goerr.V("id", id))
	}
	return nil
}
