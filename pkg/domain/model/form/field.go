package form

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// Option is one choice of a select field
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one editable control of a form
type Field struct {
	Key      string
	Label    string
	Type     types.FieldType
	Required bool
	// Options are the static choices of a select field
	Options []Option
	// DependsOn names the field whose value GetOptions reads. It is metadata only.
	DependsOn string
	// GetOptions computes the choices from the current state. It must not have
	// side effects. When set it takes precedence over Options.
	GetOptions  func(State) []Option
	Placeholder string
}

// OptionsFor returns the choices of the field for state
func (f Field) OptionsFor(state State) []Option {
	if f.GetOptions != nil {
		return f.GetOptions(state)
	}
	return f.Options
}

// ValidateFields checks that keys are unique and types are known
func ValidateFields(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			return goerr.New("field key is empty", goerr.V("label", f.Label))
		}
		if !f.Type.IsValid() {
			return goerr.New("invalid field type", goerr.V("key", f.Key), goerr.V("type", f.Type))
		}
		if _, ok := seen[f.Key]; ok {
			return goerr.New("duplicate field key", goerr.V("key", f.Key))
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}
