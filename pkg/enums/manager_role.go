package enums

import "fmt"

// ManagerRole identifies one of the three fixed manager accounts.
type ManagerRole string

const (
	ManagerRolePatron   ManagerRole = "patron"
	ManagerRoleGerante1 ManagerRole = "gerante1"
	ManagerRoleGerante2 ManagerRole = "gerante2"
)

var validManagerRoles = []ManagerRole{
	ManagerRolePatron,
	ManagerRoleGerante1,
	ManagerRoleGerante2,
}

var managerDisplayNames = map[ManagerRole]string{
	ManagerRolePatron:   "Patron",
	ManagerRoleGerante1: "Gérante 1",
	ManagerRoleGerante2: "Gérante 2",
}

// ManagerRoles lists the manager roles in display order.
func ManagerRoles() []ManagerRole {
	out := make([]ManagerRole, len(validManagerRoles))
	copy(out, validManagerRoles)
	return out
}

// String implements fmt.Stringer.
func (r ManagerRole) String() string {
	return string(r)
}

// DisplayName returns the human label shown on the login screen.
func (r ManagerRole) DisplayName() string {
	return managerDisplayNames[r]
}

// IsValid reports whether the value is a known ManagerRole.
func (r ManagerRole) IsValid() bool {
	for _, candidate := range validManagerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseManagerRole converts raw input into a ManagerRole.
func ParseManagerRole(value string) (ManagerRole, error) {
	for _, candidate := range validManagerRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid manager role %q", value)
}
