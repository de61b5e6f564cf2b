package ledger

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Repository persists the payment log. Payments are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context) ([]models.Payment, error)
}

type repository struct {
	payments *store.Collection[models.Payment, *models.Payment]
}

// NewRepository binds the repository to the payments collection.
func NewRepository(s *store.Store) Repository {
	return &repository{payments: store.NewCollection[models.Payment](s, store.Payments)}
}

func (r *repository) Append(ctx context.Context, payment *models.Payment) error {
	payment.ID = ""
	return r.payments.Add(ctx, payment)
}

func (r *repository) List(ctx context.Context) ([]models.Payment, error) {
	return r.payments.List(ctx)
}
