package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/cli/config"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

const validConfig = `
[[entity]]
name = "regions"
label = "Regions"
list_filters = ["country_id"]

  [[entity.field]]
  key = "name"
  label = "Name"
  type = "text"
  required = true

  [[entity.field]]
  key = "country_id"
  label = "Country"
  type = "select"
  options_from = "countries"

  [[entity.field]]
  key = "tier"
  label = "Tier"
  type = "select"

    [[entity.field.option]]
    value = "gold"
    label = "Gold"

    [[entity.field.option]]
    value = "silver"
    label = "Silver"

  [[entity.column]]
  key = "name"
  header = "Name"
  sortable = true

  [[entity.column]]
  key = "tier"
  header = "Tier"

[[navigation]]
path = "/"
label = "Home"

[[navigation]]
label = "Admin"
roles = ["admin"]

  [[navigation.children]]
  path = "/master/regions"
  label = "Regions"

[[upload]]
context = "avatar"
allowed_prefixes = ["image/png", "image/jpeg"]
max_bytes = 1048576
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salesdesk.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	cfg, err := config.LoadAppConfiguration(writeConfig(t, validConfig))
	gt.NoError(t, err).Required()

	gt.Array(t, cfg.Entities).Length(1).Required()
	gt.Array(t, cfg.Entities[0].Fields).Length(3)
	gt.Array(t, cfg.Entities[0].Fields[2].Options).Length(2)

	registry, err := cfg.Registry()
	gt.NoError(t, err).Required()
	regions, err := registry.Get("regions")
	gt.NoError(t, err).Required()
	gt.String(t, regions.Label).Equal("Regions")
	gt.Value(t, regions.Fields[1].OptionsFrom).Equal(types.EntityName("countries"))

	// built-in entities stay available
	_, err = registry.Get("countries")
	gt.NoError(t, err)

	nav := cfg.NavigationItems()
	gt.Array(t, nav).Length(2).Required()
	gt.Array(t, nav[1].Roles).Equal([]types.Role{types.RoleAdmin})
	gt.Array(t, nav[1].Children).Length(1)

	policies := cfg.UploadPolicies()
	gt.Value(t, policies["avatar"].MaxBytes).Equal(int64(1048576))
	_, ok := policies["image"]
	gt.Bool(t, ok).True()
}

func TestLoadAppConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "broken TOML",
			content: `[[entity]`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "duplicate entity",
			content: `
[[entity]]
name = "regions"
label = "Regions"
  [[entity.field]]
  key = "name"
  label = "Name"
  type = "text"
  [[entity.column]]
  key = "name"
  header = "Name"

[[entity]]
name = "regions"
label = "Regions again"
`,
			wantErr: config.ErrDuplicateEntity,
		},
		{
			name: "entity without fields",
			content: `
[[entity]]
name = "regions"
label = "Regions"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "reference to unknown entity",
			content: `
[[entity]]
name = "regions"
label = "Regions"
  [[entity.field]]
  key = "planet_id"
  label = "Planet"
  type = "select"
  options_from = "planets"
  [[entity.column]]
  key = "planet_id"
  header = "Planet"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "navigation without label",
			content: `
[[navigation]]
path = "/"
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "navigation with unknown role",
			content: `
[[navigation]]
label = "Ops"
roles = ["operator"]
`,
			wantErr: config.ErrInvalidRole,
		},
		{
			name: "nested navigation with unknown role",
			content: `
[[navigation]]
label = "Ops"
  [[navigation.children]]
  label = "Jobs"
  roles = ["root"]
`,
			wantErr: config.ErrInvalidRole,
		},
		{
			name: "upload policy without limit",
			content: `
[[upload]]
context = "avatar"
allowed_prefixes = ["image/"]
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "duplicate upload context",
			content: `
[[upload]]
context = "avatar"
allowed_prefixes = ["image/"]
max_bytes = 10

[[upload]]
context = "avatar"
allowed_prefixes = ["image/"]
max_bytes = 20
`,
			wantErr: config.ErrDuplicateUploadPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			gt.Error(t, err).Is(tt.wantErr)
		})
	}

	t.Run("file not found", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}

func TestAppConfigure(t *testing.T) {
	t.Run("built-in defaults without a file", func(t *testing.T) {
		app := config.NewAppForTest("")
		_, ws, err := app.Configure()
		gt.NoError(t, err).Required()
		gt.Number(t, len(ws.Registry.List())).Greater(0)
		gt.Value(t, ws.Navigation).Nil()
		_, ok := ws.UploadPolicies["attachment"]
		gt.Bool(t, ok).True()
	})

	t.Run("file overrides", func(t *testing.T) {
		app := config.NewAppForTest(writeConfig(t, validConfig))
		_, ws, err := app.Configure()
		gt.NoError(t, err).Required()
		_, err = ws.Registry.Get("regions")
		gt.NoError(t, err)
		gt.Array(t, ws.Navigation).Length(2)
	})
}
