package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/metrics"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Catalog is the article surface the table service needs.
type Catalog interface {
	Get(ctx context.Context, id string) (*models.Article, error)
	AdjustStock(ctx context.Context, id string, delta int) (*models.Article, error)
}

// ModeSource returns the operating mode new lines are priced in.
type ModeSource interface {
	Mode(ctx context.Context) (enums.Mode, error)
}

// PaymentRecorder appends settled payments to the payment log.
type PaymentRecorder interface {
	Record(ctx context.Context, payment *models.Payment) error
}

// Service defines table and order operations.
type Service interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, id string) (*models.Table, error)
	CreateTable(ctx context.Context, actorID string, input CreateTableInput) (*models.Table, error)
	DeleteTable(ctx context.Context, actorID, id string) error
	AddLine(ctx context.Context, actorID, tableID string, input AddLineInput) (*models.Table, error)
	RemoveLine(ctx context.Context, actorID, tableID, articleID string) (*models.Table, error)
	Pay(ctx context.Context, actorID, tableID string) (*PaymentResult, error)
}

type ServiceParams struct {
	Repo     Repository
	Catalog  Catalog
	Modes    ModeSource
	Payments PaymentRecorder
	Activity activity.Recorder
	Metrics  *metrics.SalesMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	catalog  Catalog
	modes    ModeSource
	payments PaymentRecorder
	activity activity.Recorder
	metrics  *metrics.SalesMetrics
	logg     *logger.Logger
	now      func() time.Time

	// mu serializes table and stock read-modify-write cycles.
	mu sync.Mutex
}

// NewService builds the table service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Modes == nil {
		return nil, fmt.Errorf("mode source required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment recorder required")
	}
	if params.Activity == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		catalog:  params.Catalog,
		modes:    params.Modes,
		payments: params.Payments,
		activity: params.Activity,
		metrics:  params.Metrics,
		logg:     logg,
		now:      now,
	}, nil
}

func (s *service) ListTables(ctx context.Context) ([]models.Table, error) {
	tables, err := s.repo.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list tables")
	}
	return tables, nil
}

func (s *service) GetTable(ctx context.Context, id string) (*models.Table, error) {
	table, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, store.Classify(err, "load table")
	}
	return table, nil
}

func (s *service) CreateTable(ctx context.Context, actorID string, input CreateTableInput) (*models.Table, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table name is required")
	}
	table := &models.Table{Name: name, Orders: []models.OrderLine{}}
	if err := s.repo.Create(ctx, table); err != nil {
		return nil, store.Classify(err, "create table")
	}
	s.record(ctx, actorID, activity.ActionTableCreate, fmt.Sprintf("Nouvelle table %q créée", name))
	return table, nil
}

func (s *service) DeleteTable(ctx context.Context, actorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.repo.Get(ctx, id)
	if err != nil {
		return store.Classify(err, "load table")
	}
	if table.IsOccupied() {
		return ErrOccupiedTableDeletion
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return store.Classify(err, "delete table")
	}
	s.record(ctx, actorID, activity.ActionTableDelete, fmt.Sprintf("Table %q supprimée", table.Name))
	return nil
}

func (s *service) AddLine(ctx context.Context, actorID, tableID string, input AddLineInput) (*models.Table, error) {
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.repo.Get(ctx, tableID)
	if err != nil {
		return nil, store.Classify(err, "load table")
	}
	article, err := s.catalog.Get(ctx, input.ArticleID)
	if err != nil {
		return nil, store.Classify(err, "load article")
	}
	mode, err := s.modes.Mode(ctx)
	if err != nil {
		return nil, err
	}

	next, _, err := AddLine(*table, *article, input.Quantity, mode)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.AdjustStock(ctx, article.ID, -input.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		s.restoreStock(ctx, article.ID, input.Quantity)
		return nil, store.Classify(err, "save table")
	}

	s.metrics.AddLines(string(mode), input.Quantity)
	s.record(ctx, actorID, activity.ActionOrderAdd,
		fmt.Sprintf("%dx %s ajouté à %s", input.Quantity, article.Name, table.Name))
	return &next, nil
}

func (s *service) RemoveLine(ctx context.Context, actorID, tableID, articleID string) (*models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.repo.Get(ctx, tableID)
	if err != nil {
		return nil, store.Classify(err, "load table")
	}
	next, removed := RemoveLine(*table, articleID)
	if removed == nil {
		return table, nil
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		return nil, store.Classify(err, "save table")
	}
	s.restoreStock(ctx, removed.ArticleID, removed.Quantity)

	s.record(ctx, actorID, activity.ActionOrderCancel,
		fmt.Sprintf("%dx %s annulé de %s", removed.Quantity, removed.ArticleName, table.Name))
	return &next, nil
}

func (s *service) Pay(ctx context.Context, actorID, tableID string) (*PaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.repo.Get(ctx, tableID)
	if err != nil {
		return nil, store.Classify(err, "load table")
	}
	mode, err := s.modes.Mode(ctx)
	if err != nil {
		return nil, err
	}
	recordedBy := strings.TrimSpace(actorID)
	if recordedBy == "" {
		recordedBy = models.UnknownRecorder
	}

	reset, payment, err := Pay(*table, mode, recordedBy, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.payments.Record(ctx, &payment); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &reset); err != nil {
		return nil, store.Classify(err, "reset table")
	}

	s.metrics.ObservePayment(string(mode), int64(payment.Amount))
	s.record(ctx, actorID, activity.ActionPayment,
		fmt.Sprintf("%s: %s FCFA (Mode: %s)", table.Name, payment.Amount, mode.Label()))
	return &PaymentResult{Table: reset, Payment: payment}, nil
}

// restoreStock returns units to an article. A deleted article is skipped.
func (s *service) restoreStock(ctx context.Context, articleID string, qty int) {
	if _, err := s.catalog.AdjustStock(ctx, articleID, qty); err != nil {
		if errors.Is(err, store.ErrNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return
		}
		s.logg.Error(ctx, "orders.restore_stock_failed", err)
	}
}

func (s *service) record(ctx context.Context, actorID, action, details string) {
	if err := s.activity.Record(ctx, actorID, action, details); err != nil {
		s.logg.Error(ctx, "activity.record_failed", err)
	}
}
