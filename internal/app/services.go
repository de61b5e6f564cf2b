package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/comptoir-backend/internal/access"
	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/internal/catalog"
	"github.com/angelmondragon/comptoir-backend/internal/dashboard"
	"github.com/angelmondragon/comptoir-backend/internal/employees"
	"github.com/angelmondragon/comptoir-backend/internal/ledger"
	"github.com/angelmondragon/comptoir-backend/internal/orders"
	"github.com/angelmondragon/comptoir-backend/internal/reports"
	"github.com/angelmondragon/comptoir-backend/internal/settings"
	"github.com/angelmondragon/comptoir-backend/pkg/config"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/metrics"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Params configures NewServices. Registerer and Now are optional.
type Params struct {
	Config     *config.Config
	Store      *store.Store
	Logger     *logger.Logger
	Registerer prometheus.Registerer
	Now        func() time.Time
}

// Services is the wired domain layer shared by the binaries.
type Services struct {
	Activity  activity.Service
	Settings  settings.Service
	Catalog   catalog.Service
	Ledger    ledger.Service
	Orders    orders.Service
	Employees employees.Service
	Access    access.Service
	Dashboard dashboard.Service
	Reports   reports.Service
}

func NewServices(p Params) (*Services, error) {
	if p.Config == nil || p.Store == nil {
		return nil, fmt.Errorf("config and store are required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	loc, err := p.Config.App.Location()
	if err != nil {
		return nil, err
	}

	articles := catalog.NewRepository(p.Store)

	act, err := activity.NewService(activity.NewRepository(p.Store), p.Now)
	if err != nil {
		return nil, fmt.Errorf("activity service: %w", err)
	}
	set, err := settings.NewService(settings.ServiceParams{
		Repo:         settings.NewRepository(p.Store),
		Articles:     articles,
		Activity:     act,
		DefaultCodes: p.Config.Access.DefaultCodes(),
		Location:     loc,
		Now:          p.Now,
		Logger:       p.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}
	cat, err := catalog.NewService(articles, act, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	led, err := ledger.NewService(ledger.NewRepository(p.Store), loc, p.Now)
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}
	ord, err := orders.NewService(orders.ServiceParams{
		Repo:     orders.NewRepository(p.Store),
		Catalog:  cat,
		Modes:    set,
		Payments: led,
		Activity: act,
		Metrics:  metrics.NewSalesMetrics(p.Registerer),
		Logger:   p.Logger,
		Now:      p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}
	emp, err := employees.NewService(employees.ServiceParams{
		Repo:     employees.NewRepository(p.Store),
		Reserved: set,
		Activity: act,
		Logger:   p.Logger,
		Now:      p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("employees service: %w", err)
	}
	acc, err := access.NewService(access.ServiceParams{
		Codes:     set,
		Employees: emp,
		Activity:  act,
		Logger:    p.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("access service: %w", err)
	}
	dash, err := dashboard.NewService(dashboard.ServiceParams{
		Articles:          articles,
		Tables:            ord,
		Payments:          led,
		Settings:          set,
		Location:          loc,
		LowStockThreshold: p.Config.Catalog.LowStockThreshold,
		Logger:            p.Logger,
		Now:               p.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard service: %w", err)
	}
	rep, err := reports.NewService(articles, set, loc, p.Now)
	if err != nil {
		return nil, fmt.Errorf("reports service: %w", err)
	}

	return &Services{
		Activity:  act,
		Settings:  set,
		Catalog:   cat,
		Ledger:    led,
		Orders:    ord,
		Employees: emp,
		Access:    acc,
		Dashboard: dash,
		Reports:   rep,
	}, nil
}

// SeedCatalog loads the sample articles when seeding is enabled and the
// catalog is empty.
func (s *Services) SeedCatalog(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	if !cfg.Catalog.Seed {
		return nil
	}
	added, err := s.Catalog.Seed(ctx)
	if err != nil {
		return err
	}
	if added > 0 {
		logg.Info(logg.WithField(ctx, "articles", added), "catalog seeded")
	}
	return nil
}
