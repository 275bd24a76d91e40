package memory

import (
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested item does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-process repository. Claims and schemes share one ledger
// lock so that a claim write and its scheme totals change are a single step.
type Memory struct {
	record *recordRepository
	ledger *ledger
	claim  *expenseClaimRepository
	scheme *schemeRepository
	target *targetRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	l := newLedger()
	return &Memory{
		record: newRecordRepository(),
		ledger: l,
		claim:  &expenseClaimRepository{ledger: l},
		scheme: &schemeRepository{ledger: l},
		target: newTargetRepository(),
	}
}

func (m *Memory) Record() interfaces.RecordRepository {
	return m.record
}

func (m *Memory) ExpenseClaim() interfaces.ExpenseClaimRepository {
	return m.claim
}

func (m *Memory) Scheme() interfaces.SchemeRepository {
	return m.scheme
}

func (m *Memory) Target() interfaces.TargetRepository {
	return m.target
}

func (m *Memory) Close() error {
	return nil
}
