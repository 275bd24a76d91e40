package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one record of a table. Identity is carried by the "id" field.
type Row map[string]any

// ID returns the stringified "id" field, or "" when it is absent
func (r Row) ID() string {
	v, ok := r["id"]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// Lookup extracts a value by dotted path ("territory.zone.name") over nested maps.
// Missing segments yield nil.
func Lookup(row Row, path string) any {
	if row == nil || path == "" {
		return nil
	}

	var cur any = map[string]any(row)
	for _, seg := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case map[string]any:
			cur = m[seg]
		case Row:
			cur = m[seg]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Stringify renders a raw value as text. Nil is empty, slices are comma joined
// and time values use RFC 3339.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}
