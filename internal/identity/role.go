package identity

import (
	"fmt"
	"strings"
)

// Role is the authorization level carried in the credential's "role" claim.
// Values are identical on the wire and in memory.
type Role string

// Known roles, most privileged first.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleEmployee   Role = "EMPLOYEE"
)

// AllRoles returns the full role enumeration.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleEmployee}
}

// Valid reports whether r belongs to the enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Label returns a human friendly name for selects and headers.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleAdmin:
		return "Admin"
	case RoleManager:
		return "Manager"
	case RoleEmployee:
		return "Employee"
	}
	return string(r)
}

// ParseRole converts a raw claim value into a Role. Matching is exact.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.TrimSpace(raw))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return r, nil
}
