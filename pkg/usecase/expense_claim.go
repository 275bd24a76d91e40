package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/service/querycache"
)

const (
	claimsEntity  = "expense_claims"
	schemesEntity = "schemes"
	targetsEntity = "targets"
)

var claimFilters = []string{"scheme_id", "user_id", "status", "type", "date"}

type ExpenseClaimUseCase struct {
	repo  interfaces.Repository
	cache *querycache.Cache
}

func NewExpenseClaimUseCase(repo interfaces.Repository, cache *querycache.Cache) *ExpenseClaimUseCase {
	return &ExpenseClaimUseCase{
		repo:  repo,
		cache: cache,
	}
}

// ExpenseClaimInput is the submitted claim form
type ExpenseClaimInput struct {
	SchemeID    model.SchemeID `json:"scheme_id"`
	UserID      string         `json:"user_id"`
	Type        string         `json:"type"`
	Date        string         `json:"date"`
	Amount      model.Money    `json:"amount"`
	Description string         `json:"description"`
	Attachments []string       `json:"attachments"`
}

// Create files a pending claim. A claim with the same user, type, date and
// amount as an existing one is rejected with ErrDuplicateClaim. Sales
// representatives may only file claims for themselves.
func (uc *ExpenseClaimUseCase) Create(ctx context.Context, in ExpenseClaimInput) (*Result[*model.ExpenseClaim], error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = p.Sub
	}
	if p.Role == types.RoleSalesRep && userID != p.Sub {
		return nil, goerr.Wrap(ErrPermissionDenied, "sales representatives file claims for themselves only",
			goerr.V("user_id", userID))
	}

	claim := &model.ExpenseClaim{
		SchemeID:    in.SchemeID,
		UserID:      userID,
		Type:        strings.TrimSpace(in.Type),
		Date:        in.Date,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Status:      types.ClaimStatusPending,
		Attachments: in.Attachments,
		CreatedBy:   p.Sub,
		UpdatedBy:   p.Sub,
	}
	if err := claim.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid expense claim")
	}

	scheme, err := uc.repo.Scheme().Get(ctx, claim.SchemeID)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return nil, goerr.Wrap(form.ValidationErrors{"scheme_id": form.ReasonInvalidOption}, "unknown scheme",
			goerr.V(SchemeIDKey, claim.SchemeID))
	case err != nil:
		return nil, goerr.Wrap(err, "failed to get scheme", goerr.V(SchemeIDKey, claim.SchemeID))
	case !scheme.Active:
		return nil, goerr.Wrap(form.ValidationErrors{"scheme_id": "scheme is not active"}, "inactive scheme",
			goerr.V(SchemeIDKey, claim.SchemeID))
	}

	// Create enforces the same uniqueness atomically
	existing, err := uc.repo.ExpenseClaim().FindByKey(ctx, claim.Key())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up duplicate claim")
	}
	if existing != nil {
		return nil, goerr.Wrap(ErrDuplicateClaim, "duplicate expense claim", goerr.V(ClaimIDKey, existing.ID))
	}

	created, err := uc.repo.ExpenseClaim().Create(ctx, claim)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrDuplicateClaim):
			return nil, goerr.Wrap(ErrDuplicateClaim, "duplicate expense claim")
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrSchemeNotFound, "scheme was deleted", goerr.V(SchemeIDKey, claim.SchemeID))
		}
		return nil, goerr.Wrap(err, "failed to create expense claim")
	}

	broadcast(ctx, uc.cache, claimsEntity, schemesEntity)
	return &Result[*model.ExpenseClaim]{Data: created, Notification: success("Expense claim submitted")}, nil
}

// ChangeStatus approves, rejects or reopens a claim. Only reviewers may do so.
func (uc *ExpenseClaimUseCase) ChangeStatus(ctx context.Context, id model.ExpenseClaimID, to types.ClaimStatus) (*Result[*model.ExpenseClaim], error) {
	p, err := requireReviewer(ctx)
	if err != nil {
		return nil, err
	}
	if !to.IsValid() {
		return nil, goerr.Wrap(form.ValidationErrors{"status": form.ReasonInvalidOption}, "invalid claim status",
			goerr.V(StatusKey, to))
	}

	claim, err := uc.repo.ExpenseClaim().TransitionStatus(ctx, id, to, p.Sub)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(ErrClaimNotFound, "expense claim not found", goerr.V(ClaimIDKey, id))
		case errors.Is(err, interfaces.ErrInvalidStatus):
			return nil, goerr.Wrap(ErrInvalidTransition, "invalid status transition",
				goerr.V(ClaimIDKey, id),
				goerr.V(StatusKey, to))
		}
		return nil, goerr.Wrap(err, "failed to change claim status", goerr.V(ClaimIDKey, id))
	}

	broadcast(ctx, uc.cache, claimsEntity, schemesEntity)
	return &Result[*model.ExpenseClaim]{Data: claim, Notification: success("Expense claim " + string(to))}, nil
}

// List returns claims matching filters through the query cache. Sales
// representatives only see their own claims.
func (uc *ExpenseClaimUseCase) List(ctx context.Context, filters map[string]string) ([]*model.ExpenseClaim, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	scoped := make(map[string]string, len(filters)+1)
	for field, value := range filters {
		if value == "" {
			continue
		}
		if !slices.Contains(claimFilters, field) {
			return nil, goerr.Wrap(ErrInvalidInput, "filter is not allowed",
				goerr.V(EntityKey, claimsEntity),
				goerr.V(FilterKey, field))
		}
		scoped[field] = value
	}
	if p.Role == types.RoleSalesRep {
		scoped["user_id"] = p.Sub
	}

	key := querycache.NewKey(claimsEntity, scoped)
	return querycache.Fetch(ctx, uc.cache, key, func(ctx context.Context) ([]*model.ExpenseClaim, error) {
		claims, err := uc.repo.ExpenseClaim().List(ctx, interfaces.WithEquals(key.Filters))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list expense claims")
		}
		return claims, nil
	})
}

func (uc *ExpenseClaimUseCase) Get(ctx context.Context, id model.ExpenseClaimID) (*model.ExpenseClaim, error) {
	p, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	claim, err := uc.repo.ExpenseClaim().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrClaimNotFound, "expense claim not found", goerr.V(ClaimIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get expense claim", goerr.V(ClaimIDKey, id))
	}
	if p.Role == types.RoleSalesRep && claim.UserID != p.Sub {
		return nil, goerr.Wrap(ErrClaimNotFound, "expense claim not found", goerr.V(ClaimIDKey, id))
	}
	return claim, nil
}

// Delete removes a claim and reverses its contribution to the scheme totals.
// Reviewers may delete any claim; the filer may withdraw a pending one.
func (uc *ExpenseClaimUseCase) Delete(ctx context.Context, id model.ExpenseClaimID) (*Result[model.ExpenseClaimID], error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	claim, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Role.CanReview() && (claim.CreatedBy != p.Sub || claim.Status.Normalize() != types.ClaimStatusPending) {
		return nil, goerr.Wrap(ErrPermissionDenied, "only pending claims can be withdrawn by their filer",
			goerr.V(ClaimIDKey, id))
	}

	if err := uc.repo.ExpenseClaim().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrClaimNotFound, "expense claim not found", goerr.V(ClaimIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to delete expense claim", goerr.V(ClaimIDKey, id))
	}

	broadcast(ctx, uc.cache, claimsEntity, schemesEntity)
	return &Result[model.ExpenseClaimID]{Data: id, Notification: success("Expense claim deleted")}, nil
}

// SchemeTotalsView compares the stored totals of a scheme with the totals
// derived from its claims at read time
type SchemeTotalsView struct {
	SchemeID   model.SchemeID     `json:"scheme_id"`
	Stored     model.SchemeTotals `json:"stored"`
	Computed   model.SchemeTotals `json:"computed"`
	Consistent bool               `json:"consistent"`
}

// SchemeTotals derives the totals of a scheme from its claims
func (uc *ExpenseClaimUseCase) SchemeTotals(ctx context.Context, id model.SchemeID) (*SchemeTotalsView, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	scheme, err := uc.repo.Scheme().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrSchemeNotFound, "scheme not found", goerr.V(SchemeIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get scheme", goerr.V(SchemeIDKey, id))
	}
	claims, err := uc.repo.ExpenseClaim().List(ctx, interfaces.WithEqual("scheme_id", id.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list scheme claims", goerr.V(SchemeIDKey, id))
	}

	computed := model.ComputeSchemeTotals(claims)
	return &SchemeTotalsView{
		SchemeID:   id,
		Stored:     scheme.Totals,
		Computed:   computed,
		Consistent: computed == scheme.Totals,
	}, nil
}

var claimColumns = []table.Column{
	{Key: "date", Header: "Date", Sortable: true},
	{Key: "user_id", Header: "User", Sortable: true},
	{Key: "type", Header: "Type", Sortable: true},
	{Key: "amount", Header: "Amount", Sortable: true, ClassName: "text-right", Render: moneyCell("amount")},
	{Key: "status", Header: "Status", Sortable: true, Render: func(row table.Row) string {
		return model.Badge(table.Stringify(row["status"])).Label
	}},
	{Key: "attachments", Header: "Files", ClassName: "text-right"},
	{Key: "description", Header: "Description"},
}

// Table renders the claims list as a table page
func (uc *ExpenseClaimUseCase) Table(ctx context.Context, q TableQuery) (*TableView, error) {
	claims, err := uc.List(ctx, q.Filters)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(claims))
	for i, c := range claims {
		rows[i] = c.Row()
	}
	return q.view(claimsEntity, "Expense Claims", claimColumns, rows, emptyMessage("expense claims"))
}
