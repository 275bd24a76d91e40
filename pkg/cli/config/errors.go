package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound        = goerr.New("configuration file not found")
	ErrInvalidConfig         = goerr.New("invalid configuration")
	ErrDuplicateEntity       = goerr.New("duplicate entity name")
	ErrDuplicateUploadPolicy = goerr.New("duplicate upload context")
	ErrInvalidRole           = goerr.New("invalid role")
	ErrMissingName           = goerr.New("name is required")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	EntityKey        = "entity"
	NavigationKey    = "navigation"
	UploadContextKey = "upload_context"
	RoleKey          = "role"
)
