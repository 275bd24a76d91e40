package types

import "fmt"

// FieldType represents the control type of a form field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeSwitch   FieldType = "switch"
)

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypeSelect,
		FieldTypeTextarea,
		FieldTypeDate,
		FieldTypeSwitch,
	}
}

// IsValid checks if the field type is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypeSelect,
		FieldTypeTextarea,
		FieldTypeDate,
		FieldTypeSwitch:
		return true
	default:
		return false
	}
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}

// ParseFieldType parses a string into a FieldType
func ParseFieldType(s string) (FieldType, error) {
	ft := FieldType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("invalid field type: %s", s)
	}
	return ft, nil
}
