package types

import "fmt"

// FormMode is the mode a CRUD form is opened in
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
	FormModeView   FormMode = "view"
)

// IsValid checks if the form mode is valid
func (m FormMode) IsValid() bool {
	switch m {
	case FormModeCreate, FormModeEdit, FormModeView:
		return true
	default:
		return false
	}
}

// ReadOnly reports whether every control is disabled in this mode
func (m FormMode) ReadOnly() bool {
	return m == FormModeView
}

// String returns the string representation of the form mode
func (m FormMode) String() string {
	return string(m)
}

// ParseFormMode parses a string into a FormMode. Empty input is create.
func ParseFormMode(s string) (FormMode, error) {
	if s == "" {
		return FormModeCreate, nil
	}
	mode := FormMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid form mode: %s", s)
	}
	return mode, nil
}
