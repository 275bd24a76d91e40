package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRecordNotFound = errors.New("record not found")
	ErrClaimNotFound  = errors.New("expense claim not found")
	ErrSchemeNotFound = errors.New("scheme not found")
	ErrTargetNotFound = errors.New("target not found")

	// Conflict errors
	ErrDuplicateClaim    = errors.New("an identical expense claim already exists")
	ErrInvalidTransition = errors.New("expense claim cannot move to that status")
	ErrSchemeInUse       = errors.New("scheme still has expense claims")
	ErrRecordInUse       = errors.New("record is still referenced by other records")

	// Access control errors
	ErrUnauthenticated  = errors.New("invalid or missing credentials")
	ErrPermissionDenied = errors.New("permission denied")

	// Other errors
	ErrInvalidInput         = errors.New("invalid input")
	ErrStorageNotConfigured = errors.New("object storage is not configured")
)

// Context keys for error values
const (
	EntityKey   = "entity"
	RecordIDKey = "record_id"
	ClaimIDKey  = "claim_id"
	SchemeIDKey = "scheme_id"
	TargetIDKey = "target_id"
	StatusKey   = "status"
	RoleKey     = "role"
	FilterKey   = "filter"
)
