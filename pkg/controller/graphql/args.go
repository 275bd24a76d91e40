package graphql

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/form"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

func invalidArg(name string, v any) error {
	return goerr.Wrap(usecase.ErrInvalidInput, "invalid argument", goerr.V("argument", name), goerr.V("type", fmt.Sprintf("%T", v)))
}

// stringArg returns the string argument name, or "" when it is absent
func stringArg(args map[string]any, name string) (string, error) {
	switch v := args[name].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", invalidArg(name, v)
	}
}

func boolArg(args map[string]any, name string) (bool, error) {
	switch v := args[name].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, invalidArg(name, v)
	}
}

func floatArg(args map[string]any, name string) (float64, error) {
	switch v := args[name].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, invalidArg(name, v)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, invalidArg(name, v)
		}
		return f, nil
	default:
		return 0, invalidArg(name, v)
	}
}

func moneyArg(args map[string]any, name string) (model.Money, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, nil
	}
	m, err := UnmarshalMoney(v)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid money argument", goerr.V("argument", name))
	}
	return m, nil
}

func objectArg(args map[string]any, name string) (map[string]any, error) {
	switch v := args[name].(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, invalidArg(name, v)
	}
}

func listArg(args map[string]any, name string) ([]any, error) {
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return nil, invalidArg(name, v)
	}
}

func stringsArg(args map[string]any, name string) ([]string, error) {
	items, err := listArg(args, name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, invalidArg(name, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// filtersArg reads a JSON object of equality filters. Values must be strings.
func filtersArg(args map[string]any, name string) (map[string]string, error) {
	obj, err := UnmarshalJSON(args[name])
	if err != nil {
		return nil, goerr.Wrap(err, "invalid filters", goerr.V("argument", name))
	}
	filters := make(map[string]string, len(obj))
	for field, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, goerr.Wrap(usecase.ErrInvalidInput, "filter value must be a string", goerr.V("filter", field))
		}
		filters[field] = s
	}
	return filters, nil
}

// valuesArg reads the submitted form values of a record
func valuesArg(args map[string]any, name string) (form.State, error) {
	obj, err := UnmarshalJSON(args[name])
	if err != nil {
		return nil, goerr.Wrap(err, "invalid values", goerr.V("argument", name))
	}
	return form.State(obj), nil
}

func claimInput(args map[string]any) (usecase.ExpenseClaimInput, error) {
	var in usecase.ExpenseClaimInput
	obj, err := objectArg(args, "input")
	if err != nil {
		return in, err
	}

	schemeID, err := stringArg(obj, "schemeId")
	if err != nil {
		return in, err
	}
	in.SchemeID = model.SchemeID(schemeID)
	if in.UserID, err = stringArg(obj, "userId"); err != nil {
		return in, err
	}
	if in.Type, err = stringArg(obj, "type"); err != nil {
		return in, err
	}
	if in.Date, err = stringArg(obj, "date"); err != nil {
		return in, err
	}
	if in.Amount, err = moneyArg(obj, "amount"); err != nil {
		return in, err
	}
	if in.Description, err = stringArg(obj, "description"); err != nil {
		return in, err
	}
	if in.Attachments, err = stringsArg(obj, "attachments"); err != nil {
		return in, err
	}
	return in, nil
}

func schemeInput(args map[string]any) (usecase.SchemeInput, error) {
	var in usecase.SchemeInput
	obj, err := objectArg(args, "input")
	if err != nil {
		return in, err
	}

	if in.Name, err = stringArg(obj, "name"); err != nil {
		return in, err
	}
	if in.Description, err = stringArg(obj, "description"); err != nil {
		return in, err
	}
	if in.StartDate, err = stringArg(obj, "startDate"); err != nil {
		return in, err
	}
	if in.EndDate, err = stringArg(obj, "endDate"); err != nil {
		return in, err
	}
	if in.Active, err = boolArg(obj, "active"); err != nil {
		return in, err
	}
	return in, nil
}

func targetInput(args map[string]any) (usecase.TargetInput, error) {
	var in usecase.TargetInput
	obj, err := objectArg(args, "input")
	if err != nil {
		return in, err
	}

	if in.UserID, err = stringArg(obj, "userId"); err != nil {
		return in, err
	}
	if in.TerritoryID, err = stringArg(obj, "territoryId"); err != nil {
		return in, err
	}
	if in.Period, err = stringArg(obj, "period"); err != nil {
		return in, err
	}

	lines, err := listArg(obj, "lines")
	if err != nil {
		return in, err
	}
	for _, item := range lines {
		lineObj, ok := item.(map[string]any)
		if !ok {
			return in, invalidArg("lines", item)
		}
		var line model.TargetLine
		if line.ProductID, err = stringArg(lineObj, "productId"); err != nil {
			return in, err
		}
		if line.Quantity, err = floatArg(lineObj, "quantity"); err != nil {
			return in, err
		}
		if line.Amount, err = moneyArg(lineObj, "amount"); err != nil {
			return in, err
		}
		if line.Achieved, err = moneyArg(lineObj, "achieved"); err != nil {
			return in, err
		}
		in.Lines = append(in.Lines, line)
	}
	return in, nil
}
