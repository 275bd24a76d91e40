package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/cli"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
[[entity]]
name = "regions"
label = "Regions"

  [[entity.field]]
  key = "name"
  label = "Name"
  type = "text"
  required = true

  [[entity.column]]
  key = "name"
  header = "Name"
  sortable = true
`)

	err := cli.Run(context.Background(), []string{"salesdesk", "--log-level", "error", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_Defaults(t *testing.T) {
	err := cli.Run(context.Background(), []string{"salesdesk", "--log-level", "error", "validate"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	// Invalid: uppercase entity name
	configPath := writeConfig(t, `
[[entity]]
name = "Regions"
label = "Regions"

  [[entity.field]]
  key = "name"
  label = "Name"
  type = "text"

  [[entity.column]]
  key = "name"
  header = "Name"
`)

	err := cli.Run(context.Background(), []string{"salesdesk", "--log-level", "error", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	err := cli.Run(context.Background(), []string{"salesdesk", "--log-level", "error", "validate", "--config", "/nonexistent/config.toml"}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_CheckDB(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"salesdesk", "--log-level", "error",
		"validate", "--check-db", "--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestRun_ReconcileCommand(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"salesdesk", "--log-level", "error",
		"reconcile", "--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"salesdesk", "--log-level", "loud", "validate"}, "test")
	gt.Value(t, err).NotNil()
}
