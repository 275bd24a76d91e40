package types

import "fmt"

// Role is the authorization role of a principal
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleSalesRep Role = "sales_rep"
	RoleViewer   Role = "viewer"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleSalesRep, RoleViewer}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSalesRep, RoleViewer:
		return true
	default:
		return false
	}
}

// CanWrite reports whether the role may perform mutations
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleSalesRep
}

// CanReview reports whether the role may approve or reject expense claims
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleManager
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
