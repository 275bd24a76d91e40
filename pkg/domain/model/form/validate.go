package form

import (
	"encoding/json"
	"math"
	"net/mail"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// DateLayout is the wire format of date fields
const DateLayout = "2006-01-02"

const (
	ReasonRequired      = "required"
	ReasonInvalidEmail  = "must be a valid email address"
	ReasonInvalidNumber = "must be a number"
	ReasonInvalidDate   = "must be a date in YYYY-MM-DD format"
	ReasonInvalidOption = "must be one of the available options"
)

// ValidationErrors maps field keys to the reason their value was rejected
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate checks required markers and, for non-empty values, the type of each
// field. A switch is never missing. It returns nil when state is acceptable.
func Validate(fields []Field, state State) ValidationErrors {
	errs := ValidationErrors{}
	for _, f := range fields {
		v := state[f.Key]
		if f.Type == types.FieldTypeSwitch {
			continue
		}
		if isEmpty(v) {
			if f.Required {
				errs[f.Key] = ReasonRequired
			}
			continue
		}
		if reason := checkType(f, v, state); reason != "" {
			errs[f.Key] = reason
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}

func checkType(f Field, v any, state State) string {
	switch f.Type {
	case types.FieldTypeEmail:
		s, ok := v.(string)
		if !ok {
			return ReasonInvalidEmail
		}
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != strings.TrimSpace(s) {
			return ReasonInvalidEmail
		}

	case types.FieldTypeNumber:
		if _, ok := ToNumber(v); !ok {
			return ReasonInvalidNumber
		}

	case types.FieldTypeDate:
		switch x := v.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(DateLayout, x); err != nil {
				return ReasonInvalidDate
			}
		default:
			return ReasonInvalidDate
		}

	case types.FieldTypeSelect:
		options := f.OptionsFor(state)
		if len(options) == 0 {
			return ""
		}
		text := toText(v)
		if !slices.ContainsFunc(options, func(o Option) bool { return o.Value == text }) {
			return ReasonInvalidOption
		}
	}
	return ""
}

// ToNumber converts a form value to a finite float64. Numeric strings are
// accepted. NaN and infinities are not numbers here.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
