package employees

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Repository persists the employee directory.
type Repository interface {
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	employees *store.Collection[models.Employee, *models.Employee]
}

func NewRepository(s *store.Store) Repository {
	return &repository{employees: store.NewCollection[models.Employee](s, store.Employees)}
}

func (r *repository) List(ctx context.Context) ([]models.Employee, error) {
	return r.employees.List(ctx)
}

func (r *repository) Get(ctx context.Context, id string) (*models.Employee, error) {
	return r.employees.Get(ctx, id)
}

func (r *repository) Create(ctx context.Context, employee *models.Employee) error {
	employee.ID = ""
	return r.employees.Add(ctx, employee)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.employees.Delete(ctx, id)
}
