package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/internal/employees"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "Code incorrect")
	ErrUnknownActor       = pkgerrors.New(pkgerrors.CodeUnauthorized, "identité inconnue")
	ErrManagerOnly        = pkgerrors.New(pkgerrors.CodeForbidden, "réservé aux responsables")
	ErrPatronOnly         = pkgerrors.New(pkgerrors.CodeForbidden, "réservé au patron")
	ErrManagerCodeTaken   = pkgerrors.New(pkgerrors.CodeConflict, "Ce code est déjà utilisé par un autre responsable")
)

// CodeStore reads and overrides the manager access codes.
type CodeStore interface {
	ManagerCodes(ctx context.Context) (map[enums.ManagerRole]string, error)
	SetManagerCode(ctx context.Context, role enums.ManagerRole, code string) error
}

// Directory is the slice of the employee service used to authenticate staff.
type Directory interface {
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
}

// Service resolves actors and checks their access codes. No token is issued:
// callers present the actor id on each request.
type Service interface {
	Actors(ctx context.Context) ([]Actor, error)
	Login(ctx context.Context, actorID, code string) (*Principal, error)
	Logout(ctx context.Context, principal Principal) error
	Navigate(ctx context.Context, principal Principal, section string) error
	Resolve(ctx context.Context, actorID string) (*Principal, error)
	UpdateManagerCode(ctx context.Context, principal Principal, role enums.ManagerRole, code string) error
}

type ServiceParams struct {
	Codes     CodeStore
	Employees Directory
	Activity  activity.Recorder
	Logger    *logger.Logger
}

type service struct {
	codes     CodeStore
	employees Directory
	activity  activity.Recorder
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Codes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "code store required")
	}
	if params.Employees == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee directory required")
	}
	if params.Activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{codes: params.Codes, employees: params.Employees, activity: params.Activity, logg: logg}, nil
}

func (s *service) Actors(ctx context.Context) ([]Actor, error) {
	staff, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	roles := enums.ManagerRoles()
	out := make([]Actor, 0, len(roles)+len(staff))
	for _, role := range roles {
		out = append(out, Actor{ID: string(role), Kind: enums.ActorKindManager, DisplayName: role.DisplayName()})
	}
	for _, e := range staff {
		out = append(out, Actor{ID: e.ID, Kind: enums.ActorKindEmployee, DisplayName: e.Name, WorkMode: e.WorkMode})
	}
	return out, nil
}

func (s *service) Login(ctx context.Context, actorID, code string) (*Principal, error) {
	actorID = strings.TrimSpace(actorID)
	code = strings.TrimSpace(code)
	if actorID == "" || code == "" {
		return nil, ErrInvalidCredentials
	}

	var principal Principal
	if role, err := enums.ParseManagerRole(actorID); err == nil {
		codes, err := s.codes.ManagerCodes(ctx)
		if err != nil {
			return nil, err
		}
		if codes[role] != code {
			return nil, ErrInvalidCredentials
		}
		principal = managerPrincipal(role)
	} else {
		employee, err := s.employees.Get(ctx, actorID)
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, err
		}
		if employee.Code != code {
			return nil, ErrInvalidCredentials
		}
		principal = employeePrincipal(employee)
	}

	s.record(ctx, principal.ActorID, activity.ActionLogin, "")
	return &principal, nil
}

func (s *service) Logout(ctx context.Context, principal Principal) error {
	return s.activity.Record(ctx, principal.ActorID, activity.ActionLogout, "")
}

func (s *service) Navigate(ctx context.Context, principal Principal, section string) error {
	section = strings.TrimSpace(section)
	if section == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "section is required")
	}
	return s.activity.Record(ctx, principal.ActorID, activity.ActionNavigation, "Accès à la section "+section)
}

func (s *service) Resolve(ctx context.Context, actorID string) (*Principal, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, ErrUnknownActor
	}
	if role, err := enums.ParseManagerRole(actorID); err == nil {
		principal := managerPrincipal(role)
		return &principal, nil
	}
	employee, err := s.employees.Get(ctx, actorID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, ErrUnknownActor
	}
	if err != nil {
		return nil, err
	}
	principal := employeePrincipal(employee)
	return &principal, nil
}

func (s *service) UpdateManagerCode(ctx context.Context, principal Principal, role enums.ManagerRole, code string) error {
	if !principal.IsPatron() {
		return ErrPatronOnly
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown manager role")
	}
	code = strings.TrimSpace(code)
	if !models.ValidAccessCode(code) {
		return employees.ErrInvalidCodeFormat
	}
	current, err := s.codes.ManagerCodes(ctx)
	if err != nil {
		return err
	}
	for other, otherCode := range current {
		if other != role && otherCode == code {
			return ErrManagerCodeTaken
		}
	}
	inUse, err := s.employees.CodeInUse(ctx, code)
	if err != nil {
		return err
	}
	if inUse {
		return employees.ErrDuplicateEmployeeCode
	}
	if err := s.codes.SetManagerCode(ctx, role, code); err != nil {
		return err
	}
	s.record(ctx, principal.ActorID, activity.ActionAccessCode, fmt.Sprintf("Code de %s modifié", role.DisplayName()))
	return nil
}

func (s *service) record(ctx context.Context, actorID, action, details string) {
	if err := s.activity.Record(ctx, actorID, action, details); err != nil {
		s.logg.Error(ctx, "activity.record_failed", err)
	}
}

func employeePrincipal(e *models.Employee) Principal {
	return Principal{
		ActorID:     e.ID,
		Kind:        enums.ActorKindEmployee,
		Role:        EmployeeRole,
		DisplayName: e.Name,
		WorkMode:    e.WorkMode,
	}
}
