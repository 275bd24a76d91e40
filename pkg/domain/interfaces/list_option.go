package interfaces

import "sort"

// ListOption is a functional option for filtering List results by equality
type ListOption func(*listConfig)

type listConfig struct {
	equals map[string]string
}

// WithEqual keeps only items whose field equals value
func WithEqual(field, value string) ListOption {
	return func(c *listConfig) {
		if c.equals == nil {
			c.equals = make(map[string]string)
		}
		c.equals[field] = value
	}
}

// WithEquals applies every pair of filters as WithEqual
func WithEquals(filters map[string]string) ListOption {
	return func(c *listConfig) {
		for k, v := range filters {
			WithEqual(k, v)(c)
		}
	}
}

// BuildListConfig builds a listConfig from options
func BuildListConfig(opts ...ListOption) *listConfig {
	cfg := &listConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Equals returns the equality filters
func (c *listConfig) Equals() map[string]string {
	return c.equals
}

// Fields returns the filtered field names in sorted order
func (c *listConfig) Fields() []string {
	keys := make([]string, 0, len(c.equals))
	for k := range c.equals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match reports whether get satisfies every filter
func (c *listConfig) Match(get func(field string) string) bool {
	for field, want := range c.equals {
		if get(field) != want {
			return false
		}
	}
	return true
}
