package activity

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Repository persists activity entries. There is no update or delete.
type Repository interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context) ([]models.ActivityLog, error)
}

type repository struct {
	logs *store.Collection[models.ActivityLog, *models.ActivityLog]
}

// NewRepository binds the repository to the activity_logs collection.
func NewRepository(s *store.Store) Repository {
	return &repository{logs: store.NewCollection[models.ActivityLog](s, store.ActivityLogs)}
}

func (r *repository) Append(ctx context.Context, entry *models.ActivityLog) error {
	return r.logs.Add(ctx, entry)
}

func (r *repository) List(ctx context.Context) ([]models.ActivityLog, error) {
	return r.logs.List(ctx)
}
