package settings

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Repository persists the singleton settings documents and daily snapshots.
type Repository interface {
	GetMode(ctx context.Context) (*models.ModeSetting, error)
	SaveMode(ctx context.Context, setting *models.ModeSetting) error
	GetAccessCodes(ctx context.Context) (*models.AccessCodes, error)
	SaveAccessCodes(ctx context.Context, codes *models.AccessCodes) error
	GetSnapshot(ctx context.Context, day string) (*models.StockSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.StockSnapshot) error
}

type repository struct {
	modes     *store.Collection[models.ModeSetting, *models.ModeSetting]
	codes     *store.Collection[models.AccessCodes, *models.AccessCodes]
	snapshots *store.Collection[models.StockSnapshot, *models.StockSnapshot]
}

func NewRepository(s *store.Store) Repository {
	return &repository{
		modes:     store.NewCollection[models.ModeSetting](s, store.Settings),
		codes:     store.NewCollection[models.AccessCodes](s, store.Settings),
		snapshots: store.NewCollection[models.StockSnapshot](s, store.StockSnapshots),
	}
}

func (r *repository) GetMode(ctx context.Context) (*models.ModeSetting, error) {
	return r.modes.Get(ctx, models.ModeSettingID)
}

func (r *repository) SaveMode(ctx context.Context, setting *models.ModeSetting) error {
	setting.ID = models.ModeSettingID
	return r.modes.Save(ctx, setting)
}

func (r *repository) GetAccessCodes(ctx context.Context) (*models.AccessCodes, error) {
	return r.codes.Get(ctx, models.AccessCodesID)
}

func (r *repository) SaveAccessCodes(ctx context.Context, codes *models.AccessCodes) error {
	codes.ID = models.AccessCodesID
	return r.codes.Save(ctx, codes)
}

func (r *repository) GetSnapshot(ctx context.Context, day string) (*models.StockSnapshot, error) {
	return r.snapshots.Get(ctx, day)
}

func (r *repository) SaveSnapshot(ctx context.Context, snapshot *models.StockSnapshot) error {
	snapshot.ID = snapshot.Day
	return r.snapshots.Save(ctx, snapshot)
}
