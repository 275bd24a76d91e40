package graphql

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

// MarshalTime serializes time.Time to RFC3339 string
func MarshalTime(t time.Time) graphql.Marshaler {
	return graphql.WriterFunc(func(w io.Writer) {
		data, _ := json.Marshal(t.Format(time.RFC3339))
		_, _ = w.Write(data)
	})
}

// UnmarshalTime deserializes RFC3339 string to time.Time
func UnmarshalTime(v any) (time.Time, error) {
	if str, ok := v.(string); ok {
		return time.Parse(time.RFC3339, str)
	}
	return time.Time{}, goerr.Wrap(usecase.ErrInvalidInput, "time must be a string", goerr.V("value", v))
}

// MarshalJSON serializes map[string]any to JSON. A nil map is an empty object.
func MarshalJSON(v map[string]any) graphql.Marshaler {
	if v == nil {
		v = map[string]any{}
	}
	return graphql.WriterFunc(func(w io.Writer) {
		data, _ := json.Marshal(v)
		_, _ = w.Write(data)
	})
}

// UnmarshalJSON deserializes JSON to map[string]any
func UnmarshalJSON(v any) (map[string]any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return val, nil
	case string:
		var result map[string]any
		if err := json.Unmarshal([]byte(val), &result); err != nil {
			return nil, goerr.Wrap(usecase.ErrInvalidInput, "invalid JSON", goerr.V("reason", err.Error()))
		}
		return result, nil
	default:
		return nil, goerr.Wrap(usecase.ErrInvalidInput, "JSON must be an object or string", goerr.V("type", fmt.Sprintf("%T", v)))
	}
}

// MarshalMoney writes the amount as a decimal string so no precision is lost
func MarshalMoney(m model.Money) graphql.Marshaler {
	return graphql.MarshalString(m.String())
}

// UnmarshalMoney accepts a decimal string or a JSON number
func UnmarshalMoney(v any) (model.Money, error) {
	switch val := v.(type) {
	case string:
		return model.ParseMoney(val)
	case json.Number:
		return model.ParseMoney(val.String())
	case int64:
		return model.ParseMoney(strconv.FormatInt(val, 10))
	case int:
		return model.ParseMoney(strconv.Itoa(val))
	case float64:
		return model.ParseMoney(strconv.FormatFloat(val, 'f', -1, 64))
	default:
		return 0, goerr.Wrap(model.ErrInvalidMoney, "money must be a string or number", goerr.V("type", fmt.Sprintf("%T", v)))
	}
}

// text renders string-like domain values such as IDs and enums
func text(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case *string:
		return *val
	case fmt.Stringer:
		return val.String()
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(v)
}

var jsonObjectType = reflect.TypeFor[map[string]any]()

func marshalScalar(name string, v any) (graphql.Marshaler, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))

	switch name {
	case "String":
		return graphql.MarshalString(text(v)), nil
	case "ID":
		return graphql.MarshalID(text(v)), nil
	case "Boolean":
		if rv.Kind() == reflect.Bool {
			return graphql.MarshalBoolean(rv.Bool()), nil
		}
	case "Int":
		switch {
		case rv.CanInt():
			return graphql.MarshalInt64(rv.Int()), nil
		case rv.CanUint():
			return graphql.MarshalInt64(int64(rv.Uint())), nil
		}
	case "Float":
		switch {
		case rv.CanFloat():
			return graphql.MarshalFloat(rv.Float()), nil
		case rv.CanInt():
			return graphql.MarshalFloat(float64(rv.Int())), nil
		}
	case "Time":
		if t, ok := rv.Interface().(time.Time); ok {
			return MarshalTime(t), nil
		}
	case "Money":
		if m, ok := rv.Interface().(model.Money); ok {
			return MarshalMoney(m), nil
		}
	case "JSON":
		if rv.Kind() == reflect.Map && rv.Type().ConvertibleTo(jsonObjectType) {
			return MarshalJSON(rv.Convert(jsonObjectType).Interface().(map[string]any)), nil
		}
	}
	return nil, goerr.New("value does not fit scalar", goerr.V("scalar", name), goerr.V("type", fmt.Sprintf("%T", v)))
}
