package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

const productsEntity types.EntityName = "products"

// DashboardUseCase builds the headline stat cards from cached lists
type DashboardUseCase struct {
	records *RecordUseCase
	claims  *ExpenseClaimUseCase
	schemes *SchemeUseCase
	targets *TargetUseCase
}

func NewDashboardUseCase(records *RecordUseCase, claims *ExpenseClaimUseCase, schemes *SchemeUseCase, targets *TargetUseCase) *DashboardUseCase {
	return &DashboardUseCase{
		records: records,
		claims:  claims,
		schemes: schemes,
		targets: targets,
	}
}

// StatCards returns the dashboard cards. Claim figures are scoped to the
// principal when it is a sales representative.
func (uc *DashboardUseCase) StatCards(ctx context.Context) ([]model.StatCard, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	var (
		products []*model.Record
		claims   []*model.ExpenseClaim
		schemes  []*model.Scheme
		targets  []*TargetView
	)

	eg, ctx := errgroup.WithContext(ctx)
	if _, err := uc.records.Schema(productsEntity); err == nil {
		eg.Go(func() (err error) {
			products, err = uc.records.List(ctx, productsEntity, nil)
			return err
		})
	}
	eg.Go(func() (err error) {
		claims, err = uc.claims.List(ctx, nil)
		return err
	})
	eg.Go(func() (err error) {
		schemes, err = uc.schemes.List(ctx)
		return err
	})
	eg.Go(func() (err error) {
		targets, err = uc.targets.List(ctx, nil)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	pending := 0
	var payout model.Money
	for _, c := range claims {
		switch c.Status.Normalize() {
		case types.ClaimStatusPending:
			pending++
		case types.ClaimStatusApproved:
			payout += c.Amount
		}
	}

	activeSchemes := 0
	for _, s := range schemes {
		if s.Active {
			activeSchemes++
		}
	}

	pendingTone := types.ToneSuccess
	if pending > 0 {
		pendingTone = types.ToneWarning
	}

	return []model.StatCard{
		{Title: "Products", Value: strconv.Itoa(len(products)), Tone: types.ToneInfo},
		{Title: "Active Schemes", Value: strconv.Itoa(activeSchemes), Delta: fmt.Sprintf("of %d", len(schemes)), Tone: types.ToneInfo},
		{Title: "Pending Claims", Value: strconv.Itoa(pending), Delta: fmt.Sprintf("of %d", len(claims)), Tone: pendingTone},
		{Title: "Approved Payout", Value: payout.String(), Tone: types.ToneSuccess},
		achievementCard(targets),
	}, nil
}

func achievementCard(targets []*TargetView) model.StatCard {
	var amount, achieved model.Money
	for _, t := range targets {
		amount += t.Summary.TotalAmount
		achieved += t.Summary.TotalAchieved
	}
	card := model.StatCard{Title: "Target Achievement", Value: "0.0%", Tone: types.ToneNeutral}
	if amount == 0 {
		return card
	}

	pct := float64(achieved) / float64(amount) * 100
	card.Value = fmt.Sprintf("%.1f%%", pct)
	card.Delta = fmt.Sprintf("%s of %s", achieved, amount)
	switch {
	case pct >= 100:
		card.Tone = types.ToneSuccess
	case pct >= 50:
		card.Tone = types.ToneInfo
	default:
		card.Tone = types.ToneDanger
	}
	return card
}
