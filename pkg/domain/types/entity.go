package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// EntityName identifies a master-data entity such as "countries" or "warehouses"
type EntityName string

// Validate checks if the EntityName is valid
func (e EntityName) Validate() error {
	if e == "" {
		return goerr.New("entity name cannot be empty")
	}
	if !keyPattern.MatchString(string(e)) {
		return goerr.New("entity name must be lowercase alphanumeric with underscores", goerr.V("entity", e))
	}
	return nil
}

// String returns the string representation of EntityName
func (e EntityName) String() string {
	return string(e)
}

// FieldKey identifies a field of an entity record
type FieldKey string

// Validate checks if the FieldKey is valid
func (k FieldKey) Validate() error {
	if k == "" {
		return goerr.New("field key cannot be empty")
	}
	if !keyPattern.MatchString(string(k)) {
		return goerr.New("field key must be lowercase alphanumeric with underscores", goerr.V("key", k))
	}
	return nil
}

// String returns the string representation of FieldKey
func (k FieldKey) String() string {
	return string(k)
}
