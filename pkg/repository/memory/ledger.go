package memory

import (
	"sync"

	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
)

// ledger holds claims and schemes under one lock
type ledger struct {
	mu      sync.RWMutex
	schemes map[model.SchemeID]*model.Scheme
	claims  map[model.ExpenseClaimID]*model.ExpenseClaim
	keys    map[string]model.ExpenseClaimID
}

func newLedger() *ledger {
	return &ledger{
		schemes: make(map[model.SchemeID]*model.Scheme),
		claims:  make(map[model.ExpenseClaimID]*model.ExpenseClaim),
		keys:    make(map[string]model.ExpenseClaimID),
	}
}

// applyDelta adds delta to the totals of the scheme. Callers hold mu.
func (l *ledger) applyDelta(id model.SchemeID, delta model.SchemeTotals) {
	if s, ok := l.schemes[id]; ok && !delta.IsZero() {
		s.Totals = s.Totals.Add(delta)
	}
}
