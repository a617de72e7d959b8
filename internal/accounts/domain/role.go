package domain

import "errors"

// Role is one of the two account roles.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

var ErrInvalidRole = errors.New("domain: invalid role")

// ParseRole accepts exactly "Admin" or "User".
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

func (r Role) String() string { return string(r) }
