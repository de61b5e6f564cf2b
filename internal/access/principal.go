package access

import "github.com/angelmondragon/comptoir-backend/pkg/enums"

// EmployeeRole is the role reported for every employee principal.
const EmployeeRole = "employee"

// Principal is the resolved identity behind a request or a login.
type Principal struct {
	ActorID     string          `json:"actorId"`
	Kind        enums.ActorKind `json:"kind"`
	Role        string          `json:"role"`
	DisplayName string          `json:"displayName"`
	WorkMode    enums.Mode      `json:"workMode,omitempty"`
}

func (p Principal) IsManager() bool {
	return p.Kind == enums.ActorKindManager
}

func (p Principal) IsPatron() bool {
	return p.IsManager() && p.Role == string(enums.ManagerRolePatron)
}

// Actor is one selectable identity on the login screen.
type Actor struct {
	ID          string          `json:"id"`
	Kind        enums.ActorKind `json:"kind"`
	DisplayName string          `json:"displayName"`
	WorkMode    enums.Mode      `json:"workMode,omitempty"`
}

func managerPrincipal(role enums.ManagerRole) Principal {
	return Principal{
		ActorID:     string(role),
		Kind:        enums.ActorKindManager,
		Role:        string(role),
		DisplayName: role.DisplayName(),
	}
}
