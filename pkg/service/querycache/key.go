package querycache

import (
	"net/url"
	"sort"
)

// Key identifies a cached list query: an entity plus its equality filters.
// Distinct filter combinations cache independently.
type Key struct {
	Entity  string
	Filters map[string]string
}

// NewKey builds a Key. Empty filter values are dropped.
func NewKey(entity string, filters map[string]string) Key {
	k := Key{Entity: entity}
	for f, v := range filters {
		if v == "" {
			continue
		}
		if k.Filters == nil {
			k.Filters = make(map[string]string)
		}
		k.Filters[f] = v
	}
	return k
}

// String renders the key as "entity" or "entity?f1=v1&f2=v2" with sorted fields
func (k Key) String() string {
	if len(k.Filters) == 0 {
		return k.Entity
	}
	fields := make([]string, 0, len(k.Filters))
	for f := range k.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	q := url.Values{}
	for _, f := range fields {
		q.Set(f, k.Filters[f])
	}
	return k.Entity + "?" + q.Encode()
}
