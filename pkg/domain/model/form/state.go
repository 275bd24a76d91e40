package form

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// State maps field keys to their current values
type State map[string]any

// Init returns the initial state for fields. A non-nil initial is copied
// verbatim; otherwise every declared key starts as an empty string.
func Init(fields []Field, initial State) State {
	if initial != nil {
		return maps.Clone(initial)
	}
	state := make(State, len(fields))
	for _, f := range fields {
		state[f.Key] = ""
	}
	return state
}

// Clone returns a shallow copy of s
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

// Text returns the value of key as text
func (s State) Text(key string) string {
	return toText(s[key])
}

// Bool interprets the value of key as a switch position
func (s State) Bool(key string) bool {
	return truthy(s[key])
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return false
	}
}
