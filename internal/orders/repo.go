package orders

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Repository persists tables and their open order lines.
type Repository interface {
	List(ctx context.Context) ([]models.Table, error)
	Get(ctx context.Context, id string) (*models.Table, error)
	Create(ctx context.Context, table *models.Table) error
	Save(ctx context.Context, table *models.Table) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	tables *store.Collection[models.Table, *models.Table]
}

func NewRepository(s *store.Store) Repository {
	return &repository{tables: store.NewCollection[models.Table](s, store.Tables)}
}

func (r *repository) List(ctx context.Context) ([]models.Table, error) {
	return r.tables.List(ctx)
}

func (r *repository) Get(ctx context.Context, id string) (*models.Table, error) {
	return r.tables.Get(ctx, id)
}

func (r *repository) Create(ctx context.Context, table *models.Table) error {
	table.ID = ""
	return r.tables.Add(ctx, table)
}

func (r *repository) Save(ctx context.Context, table *models.Table) error {
	return r.tables.Save(ctx, table)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.tables.Delete(ctx, id)
}
