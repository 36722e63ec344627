package user

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// AllowedRoles lists every valid role in form order.
var AllowedRoles = []Role{RoleAdmin, RoleUser}

func (r Role) IsValid() bool {
	for _, allowed := range AllowedRoles {
		if r == allowed {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts request or storage input into a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
