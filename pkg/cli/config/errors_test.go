package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		sentinelError error
		wantMatch     bool
	}{
		{
			name:          "ErrConfigNotFound can be identified",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrConfigNotFound,
			wantMatch:     true,
		},
		{
			name:          "ErrDuplicateEntity can be identified through two wraps",
			err:           goerr.Wrap(goerr.Wrap(config.ErrDuplicateEntity, "found duplicate"), "validation failed"),
			sentinelError: config.ErrDuplicateEntity,
			wantMatch:     true,
		},
		{
			name:          "ErrInvalidRole can be identified",
			err:           goerr.Wrap(config.ErrInvalidRole, "unknown role", goerr.V(config.RoleKey, "root")),
			sentinelError: config.ErrInvalidRole,
			wantMatch:     true,
		},
		{
			name:          "Different sentinel errors do not match",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrInvalidConfig,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := errors.Is(tt.err, tt.sentinelError)
			gt.Value(t, matched).Equal(tt.wantMatch)
		})
	}
}

func TestConfigErrors_Values(t *testing.T) {
	err := goerr.Wrap(config.ErrInvalidConfig, "bad entity", goerr.V(config.EntityKey, "regions"))

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	gt.Value(t, ge.Values()[config.EntityKey]).Equal("regions")
}
