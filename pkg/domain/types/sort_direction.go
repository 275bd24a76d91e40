package types

import "fmt"

// SortDirection is the ordering applied to a sorted table column
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid checks if the sort direction is valid
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// Toggle returns the opposite direction
func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// String returns the string representation of the sort direction
func (d SortDirection) String() string {
	return string(d)
}

// ParseSortDirection parses a string into a SortDirection. Empty input is ascending.
func ParseSortDirection(s string) (SortDirection, error) {
	if s == "" {
		return SortAsc, nil
	}
	d := SortDirection(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid sort direction: %s", s)
	}
	return d, nil
}
