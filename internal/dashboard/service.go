package dashboard

import (
	"context"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type ArticleSource interface {
	List(ctx context.Context) ([]models.Article, error)
}

type TableSource interface {
	ListTables(ctx context.Context) ([]models.Table, error)
}

type PaymentSource interface {
	All(ctx context.Context) ([]models.Payment, error)
}

// Settings supplies the current mode and the daily stock snapshot.
type Settings interface {
	Mode(ctx context.Context) (enums.Mode, error)
	Today() string
	EnsureDailySnapshot(ctx context.Context, day string) (*models.StockSnapshot, bool, error)
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type ServiceParams struct {
	Articles          ArticleSource
	Tables            TableSource
	Payments          PaymentSource
	Settings          Settings
	Location          *time.Location
	LowStockThreshold int
	Logger            *logger.Logger
	Now               func() time.Time
}

type service struct {
	params ServiceParams
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Articles == nil || params.Tables == nil || params.Payments == nil || params.Settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dashboard sources required")
	}
	if params.Location == nil {
		params.Location = time.Local
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{params: params, logg: logg}, nil
}

// Stats also takes the day's stock snapshot when none exists yet, so the
// first dashboard view of the day fixes the report's initial stock.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	if _, created, err := s.params.Settings.EnsureDailySnapshot(ctx, s.params.Settings.Today()); err != nil {
		s.logg.Error(ctx, "dashboard.snapshot_failed", err)
	} else if created {
		s.logg.Info(ctx, "dashboard.snapshot_created")
	}

	articles, err := s.params.Articles.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list articles")
	}
	tables, err := s.params.Tables.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.params.Payments.All(ctx)
	if err != nil {
		return nil, err
	}
	mode, err := s.params.Settings.Mode(ctx)
	if err != nil {
		return nil, err
	}

	stats := Compute(Input{
		Articles:          articles,
		Tables:            tables,
		Payments:          payments,
		Mode:              mode,
		Now:               s.params.Now(),
		Location:          s.params.Location,
		LowStockThreshold: s.params.LowStockThreshold,
	})
	return &stats, nil
}
