package form

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// ErrReadOnly is returned when a view-mode modal is edited or submitted
var ErrReadOnly = goerr.New("form is read only")

// ErrUnknownField is returned by Set for keys that are not declared
var ErrUnknownField = goerr.New("unknown form field")

const (
	SwitchOnText  = "Active"
	SwitchOffText = "Inactive"
)

// ControlKind is the widget a field is rendered with
type ControlKind string

const (
	ControlInput    ControlKind = "input"
	ControlSelect   ControlKind = "select"
	ControlTextarea ControlKind = "textarea"
	ControlCheckbox ControlKind = "checkbox"
)

// Control is the render-ready description of one field
type Control struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Kind        ControlKind     `json:"kind"`
	InputType   types.FieldType `json:"input_type"`
	Required    bool            `json:"required"`
	Disabled    bool            `json:"disabled"`
	Value       any             `json:"value"`
	Placeholder string          `json:"placeholder,omitempty"`
	Options     []Option        `json:"options,omitempty"`
	// Checked and Text describe a checkbox
	Checked bool   `json:"checked,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Action is a button offered by the modal
type Action string

const (
	ActionClose  Action = "close"
	ActionCancel Action = "cancel"
	ActionSubmit Action = "submit"
)

// Modal is the state of a create, edit or view dialog over a set of fields
type Modal struct {
	Title  string
	Mode   types.FormMode
	Fields []Field

	open  bool
	state State
}

// NewModal validates fields and returns a closed modal
func NewModal(title string, mode types.FormMode, fields []Field) (*Modal, error) {
	if !mode.IsValid() {
		return nil, goerr.New("invalid form mode", goerr.V("mode", mode))
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	return &Modal{
		Title:  title,
		Mode:   mode,
		Fields: fields,
		state:  State{},
	}, nil
}

// Open (re)initializes the form state from initial and opens the modal
func (m *Modal) Open(initial State) {
	m.state = Init(m.Fields, initial)
	m.open = true
}

// Close hides the modal. The state is kept until the next Open.
func (m *Modal) Close() {
	m.open = false
}

// IsOpen reports whether the modal is shown
func (m *Modal) IsOpen() bool {
	return m.open
}

// State returns a copy of the current form state
func (m *Modal) State() State {
	return m.state.Clone()
}

// Set changes the value of a declared field
func (m *Modal) Set(key string, value any) error {
	if m.Mode.ReadOnly() {
		return goerr.Wrap(ErrReadOnly, "cannot set field", goerr.V("key", key))
	}
	if _, ok := m.field(key); !ok {
		return goerr.Wrap(ErrUnknownField, "cannot set field", goerr.V("key", key))
	}
	m.state[key] = value
	return nil
}

// Controls renders every field for the current state
func (m *Modal) Controls() []Control {
	return RenderControls(m.Fields, m.state, m.Mode.ReadOnly())
}

// Actions returns the buttons for the mode. View offers only close.
func (m *Modal) Actions() []Action {
	if m.Mode.ReadOnly() {
		return []Action{ActionClose}
	}
	return []Action{ActionCancel, ActionSubmit}
}

// Submit validates the state and passes the whole of it to fn. Validation
// failures are returned as ValidationErrors without calling fn. Errors from fn
// are returned unchanged and the modal stays open.
func (m *Modal) Submit(fn func(State) error) error {
	if m.Mode.ReadOnly() {
		return ErrReadOnly
	}
	if errs := Validate(m.Fields, m.state); errs != nil {
		return errs
	}
	if err := fn(m.state.Clone()); err != nil {
		return err
	}
	m.open = false
	return nil
}

func (m *Modal) field(key string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// RenderControls dispatches each field to its control kind
func RenderControls(fields []Field, state State, disabled bool) []Control {
	controls := make([]Control, 0, len(fields))
	for _, f := range fields {
		c := Control{
			Key:         f.Key,
			Label:       f.Label,
			InputType:   f.Type,
			Required:    f.Required,
			Disabled:    disabled,
			Value:       state[f.Key],
			Placeholder: f.Placeholder,
		}

		switch f.Type {
		case types.FieldTypeSelect:
			c.Kind = ControlSelect
			options := f.OptionsFor(state)
			c.Options = make([]Option, 0, len(options)+1)
			c.Options = append(c.Options, Option{Value: "", Label: "Select " + f.Label})
			c.Options = append(c.Options, options...)
		case types.FieldTypeTextarea:
			c.Kind = ControlTextarea
		case types.FieldTypeSwitch:
			c.Kind = ControlCheckbox
			c.Checked = truthy(state[f.Key])
			c.Text = SwitchOffText
			if c.Checked {
				c.Text = SwitchOnText
			}
		case types.FieldTypeText, types.FieldTypeEmail, types.FieldTypeNumber, types.FieldTypeDate:
			c.Kind = ControlInput
		}

		controls = append(controls, c)
	}
	return controls
}
