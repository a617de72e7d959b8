package domain

// Identity is the authenticated caller of an operation.
type Identity struct {
	AccountID string
	Role      Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanAccess reports whether the caller may read, update or delete the
// account with id target: its owner or any Admin.
func (i Identity) CanAccess(target string) bool {
	if i.AccountID == "" {
		return false
	}
	return i.IsAdmin() || i.AccountID == target
}

// CanAssignRole reports whether the caller may change roles.
func (i Identity) CanAssignRole() bool { return i.IsAdmin() }
