package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Record() RecordRepository
	ExpenseClaim() ExpenseClaimRepository
	Scheme() SchemeRepository
	Target() TargetRepository

	Close() error
}
