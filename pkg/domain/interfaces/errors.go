package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by every repository backend
var (
	ErrNotFound       = goerr.New("not found")
	ErrDuplicateClaim = goerr.New("duplicate expense claim")
	ErrInvalidStatus  = goerr.New("invalid status transition")
	ErrSchemeHasClaim = goerr.New("scheme has expense claims")
)
