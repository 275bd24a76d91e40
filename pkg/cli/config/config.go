package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file. Entities are
// merged over the built-in ones by name; navigation replaces the built-in
// menu when present; upload policies override built-in contexts.
type AppConfig struct {
	Entities   []Entity       `toml:"entity"`
	Navigation []NavItem      `toml:"navigation"`
	Uploads    []UploadPolicy `toml:"upload"`
}

// Entity is a master-data entity declared in the configuration file
type Entity struct {
	Name        string   `toml:"name"`
	Label       string   `toml:"label"`
	Fields      []Field  `toml:"field"`
	Columns     []Column `toml:"column"`
	Invalidates []string `toml:"invalidates"`
	ListFilters []string `toml:"list_filters"`
}

// Field is one form field of an entity
type Field struct {
	Key         string   `toml:"key"`
	Label       string   `toml:"label"`
	Type        string   `toml:"type"`
	Required    bool     `toml:"required"`
	Placeholder string   `toml:"placeholder"`
	Options     []Option `toml:"option"`
	OptionsFrom string   `toml:"options_from"`
	OptionLabel string   `toml:"option_label"`
	FilterBy    string   `toml:"filter_by"`
	FilterField string   `toml:"filter_field"`
}

// Option is a fixed choice of a select field
type Option struct {
	Value string `toml:"value"`
	Label string `toml:"label"`
}

// Column is one table column of an entity
type Column struct {
	Key       string `toml:"key"`
	Header    string `toml:"header"`
	Sortable  bool   `toml:"sortable"`
	ClassName string `toml:"class_name"`
	Badge     bool   `toml:"badge"`
	CountOf   string `toml:"count_of"`
	CountBy   string `toml:"count_by"`
}

// NavItem is one menu entry
type NavItem struct {
	Path     string    `toml:"path"`
	Label    string    `toml:"label"`
	Icon     string    `toml:"icon"`
	Roles    []string  `toml:"roles"`
	Children []NavItem `toml:"children"`
}

// UploadPolicy restricts the files accepted in one upload context
type UploadPolicy struct {
	Context         string   `toml:"context"`
	AllowedPrefixes []string `toml:"allowed_prefixes"`
	MaxBytes        int64    `toml:"max_bytes"`
}

// Validate checks if the NavItem and its children are valid
func (n *NavItem) Validate() error {
	if n.Label == "" {
		return goerr.Wrap(ErrMissingName, "navigation label is required", goerr.V(NavigationKey, n.Path))
	}
	for _, role := range n.Roles {
		if !types.Role(role).IsValid() {
			return goerr.Wrap(ErrInvalidRole, "unknown role in navigation", goerr.V(NavigationKey, n.Label), goerr.V(RoleKey, role))
		}
	}
	for i := range n.Children {
		if err := n.Children[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the UploadPolicy is valid
func (u *UploadPolicy) Validate() error {
	if u.Context == "" {
		return goerr.Wrap(ErrMissingName, "upload context is required")
	}
	if len(u.AllowedPrefixes) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "upload policy requires allowed_prefixes", goerr.V(UploadContextKey, u.Context))
	}
	if u.MaxBytes <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "upload policy requires a positive max_bytes", goerr.V(UploadContextKey, u.Context))
	}
	return nil
}

// Validate checks if the AppConfig is valid. Entity schemas are checked
// against the built-in ones so that references across both resolve.
func (a *AppConfig) Validate() error {
	entityNames := make(map[string]bool)
	for _, e := range a.Entities {
		if entityNames[e.Name] {
			return goerr.Wrap(ErrDuplicateEntity, "entity declared twice", goerr.V(EntityKey, e.Name))
		}
		entityNames[e.Name] = true
	}
	if _, err := a.Registry(); err != nil {
		return err
	}

	for i := range a.Navigation {
		if err := a.Navigation[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid navigation")
		}
	}

	contexts := make(map[string]bool)
	for _, u := range a.Uploads {
		if err := u.Validate(); err != nil {
			return goerr.Wrap(err, "invalid upload policy")
		}
		if contexts[u.Context] {
			return goerr.Wrap(ErrDuplicateUploadPolicy, "upload context declared twice", goerr.V(UploadContextKey, u.Context))
		}
		contexts[u.Context] = true
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("reason", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToDomain converts the entity to its domain schema
func (e *Entity) ToDomain() *model.EntitySchema {
	schema := &model.EntitySchema{
		Name:        types.EntityName(e.Name),
		Label:       e.Label,
		ListFilters: e.ListFilters,
	}
	for _, name := range e.Invalidates {
		schema.Invalidates = append(schema.Invalidates, types.EntityName(name))
	}
	for _, f := range e.Fields {
		field := model.FieldSchema{
			Key:         types.FieldKey(f.Key),
			Label:       f.Label,
			Type:        types.FieldType(f.Type),
			Required:    f.Required,
			Placeholder: f.Placeholder,
			OptionsFrom: types.EntityName(f.OptionsFrom),
			OptionLabel: f.OptionLabel,
			FilterBy:    types.FieldKey(f.FilterBy),
			FilterField: f.FilterField,
		}
		for _, o := range f.Options {
			field.Options = append(field.Options, form.Option{Value: o.Value, Label: o.Label})
		}
		schema.Fields = append(schema.Fields, field)
	}
	for _, c := range e.Columns {
		schema.Columns = append(schema.Columns, model.ColumnSchema{
			Key:       c.Key,
			Header:    c.Header,
			Sortable:  c.Sortable,
			ClassName: c.ClassName,
			Badge:     c.Badge,
			CountOf:   types.EntityName(c.CountOf),
			CountBy:   c.CountBy,
		})
	}
	return schema
}

// ToDomain converts the menu entry to its domain form
func (n *NavItem) ToDomain() model.NavItem {
	item := model.NavItem{
		Path:  n.Path,
		Label: n.Label,
		Icon:  n.Icon,
	}
	for _, role := range n.Roles {
		item.Roles = append(item.Roles, types.Role(role))
	}
	for i := range n.Children {
		item.Children = append(item.Children, n.Children[i].ToDomain())
	}
	return item
}

// Registry returns the built-in entities overridden by the configured ones
func (a *AppConfig) Registry() (*model.EntityRegistry, error) {
	schemas := make([]*model.EntitySchema, 0, len(a.Entities))
	for i := range a.Entities {
		schemas = append(schemas, a.Entities[i].ToDomain())
	}
	registry, err := model.DefaultEntityRegistry().Override(schemas...)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid entity schema", goerr.V("reason", err.Error()))
	}
	return registry, nil
}

// NavigationItems returns the configured menu, or nil for the built-in one
func (a *AppConfig) NavigationItems() []model.NavItem {
	if len(a.Navigation) == 0 {
		return nil
	}
	items := make([]model.NavItem, 0, len(a.Navigation))
	for i := range a.Navigation {
		items = append(items, a.Navigation[i].ToDomain())
	}
	return items
}

// UploadPolicies returns the built-in upload contexts with configured ones
// replacing or extending them
func (a *AppConfig) UploadPolicies() map[string]model.UploadPolicy {
	policies := model.DefaultUploadPolicies()
	for _, u := range a.Uploads {
		policies[u.Context] = model.UploadPolicy{
			Context:         u.Context,
			AllowedPrefixes: u.AllowedPrefixes,
			MaxBytes:        u.MaxBytes,
		}
	}
	return policies
}

// Workspace is the resolved application configuration
type Workspace struct {
	Registry       *model.EntityRegistry
	Navigation     []model.NavItem
	UploadPolicies map[string]model.UploadPolicy
}

// App holds the CLI flag pointing at the configuration file
type App struct {
	path string
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML file declaring entities, navigation and upload policies",
			Sources:     cli.EnvVars("SALESDESK_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *App) Path() string {
	return x.path
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the configuration file. Without a path the built-in
// entities, menu and upload contexts are used.
func (x *App) Configure() (*AppConfig, *Workspace, error) {
	cfg := &AppConfig{}
	if x.path != "" {
		loaded, err := LoadAppConfiguration(x.path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, nil, err
	}
	return cfg, &Workspace{
		Registry:       registry,
		Navigation:     cfg.NavigationItems(),
		UploadPolicies: cfg.UploadPolicies(),
	}, nil
}
