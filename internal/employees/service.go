package employees

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

var (
	// ErrInvalidCodeFormat is returned for codes that are not six digits.
	ErrInvalidCodeFormat = pkgerrors.New(pkgerrors.CodeValidation, "Le code doit contenir exactement 6 chiffres")
	// ErrDuplicateEmployeeCode is returned when a code is already in use.
	ErrDuplicateEmployeeCode = pkgerrors.New(pkgerrors.CodeConflict, "Ce code est déjà utilisé")
)

// ReservedCodes lists the manager codes an employee may not reuse.
type ReservedCodes interface {
	ReservedCodes(ctx context.Context) (map[string]bool, error)
}

// CreateEmployeeInput is the payload accepted when adding an employee.
type CreateEmployeeInput struct {
	Name     string     `json:"name" validate:"required,max=80"`
	Code     string     `json:"code" validate:"required"`
	WorkMode enums.Mode `json:"workMode" validate:"omitempty,oneof=bar snackbar"`
}

// Service defines the employee directory operations.
type Service interface {
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, actorID string, input CreateEmployeeInput) (*models.Employee, error)
	Delete(ctx context.Context, actorID, id string) error
	Activity(ctx context.Context, id string, params activity.ListParams) (*activity.ListResult, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
}

type ServiceParams struct {
	Repo     Repository
	Reserved ReservedCodes
	Activity activity.Service
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	reserved ReservedCodes
	activity activity.Service
	logg     *logger.Logger
	now      func() time.Time
	mu       sync.Mutex
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employees repository required")
	}
	if params.Reserved == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reserved codes source required")
	}
	if params.Activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity service required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, reserved: params.Reserved, activity: params.Activity, logg: logg, now: now}, nil
}

func (s *service) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list employees")
	}
	return employees, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, store.Classify(err, "load employee")
	}
	return employee, nil
}

func (s *service) Create(ctx context.Context, actorID string, input CreateEmployeeInput) (*models.Employee, error) {
	code := strings.TrimSpace(input.Code)
	if !models.ValidAccessCode(code) {
		return nil, ErrInvalidCodeFormat
	}
	workMode := input.WorkMode
	if workMode == "" {
		workMode = enums.ModeBar
	}
	if !workMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workMode must be bar or snackbar")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reserved, err := s.reserved.ReservedCodes(ctx)
	if err != nil {
		return nil, err
	}
	if reserved[code] {
		return nil, ErrDuplicateEmployeeCode
	}
	inUse, err := s.CodeInUse(ctx, code)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, ErrDuplicateEmployeeCode
	}

	employee := &models.Employee{
		Name:      input.Name,
		Code:      code,
		WorkMode:  workMode,
		CreatedBy: actorID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, store.Classify(err, "create employee")
	}
	s.record(ctx, actorID, activity.ActionEmployeeAdd,
		fmt.Sprintf("Serveuse %q ajoutée avec le code %s (%s)", employee.Name, employee.Code, shiftLabel(employee.WorkMode)))
	return employee, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return store.Classify(err, "load employee")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return store.Classify(err, "delete employee")
	}
	s.record(ctx, actorID, activity.ActionEmployeeDelete, fmt.Sprintf("Serveuse %q supprimée", employee.Name))
	return nil
}

// Activity lists the journal entries written under the employee id.
func (s *service) Activity(ctx context.Context, id string, params activity.ListParams) (*activity.ListResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	params.Role = id
	return s.activity.List(ctx, params)
}

// CodeInUse reports whether an employee already holds code.
func (s *service) CodeInUse(ctx context.Context, code string) (bool, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		return false, store.Classify(err, "list employees")
	}
	for _, e := range employees {
		if e.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) record(ctx context.Context, actorID, action, details string) {
	if err := s.activity.Record(ctx, actorID, action, details); err != nil {
		s.logg.Error(ctx, "activity.record_failed", err)
	}
}

func shiftLabel(mode enums.Mode) string {
	if mode == enums.ModeSnackbar {
		return "Snackbar - Soirée"
	}
	return "Bar - Journée"
}
