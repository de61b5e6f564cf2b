package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// ArticleSource supplies the current catalog for stock snapshots.
type ArticleSource interface {
	List(ctx context.Context) ([]models.Article, error)
}

// Service owns the operating mode, the manager code overrides and the daily
// stock snapshots.
type Service interface {
	Mode(ctx context.Context) (enums.Mode, error)
	SetMode(ctx context.Context, actorID string, mode enums.Mode) (enums.Mode, error)
	ManagerCodes(ctx context.Context) (map[enums.ManagerRole]string, error)
	ReservedCodes(ctx context.Context) (map[string]bool, error)
	SetManagerCode(ctx context.Context, role enums.ManagerRole, code string) error
	Today() string
	EnsureDailySnapshot(ctx context.Context, day string) (*models.StockSnapshot, bool, error)
	Snapshot(ctx context.Context, day string) (*models.StockSnapshot, error)
}

type ServiceParams struct {
	Repo         Repository
	Articles     ArticleSource
	Activity     activity.Recorder
	DefaultCodes map[string]string
	Location     *time.Location
	Now          func() time.Time
	Logger       *logger.Logger
}

type service struct {
	repo     Repository
	articles ArticleSource
	activity activity.Recorder
	defaults map[enums.ManagerRole]string
	loc      *time.Location
	now      func() time.Time
	logg     *logger.Logger
	mu       sync.Mutex
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings repository required")
	}
	if params.Articles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "article source required")
	}
	if params.Activity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	defaults := make(map[enums.ManagerRole]string, len(params.DefaultCodes))
	for role, code := range params.DefaultCodes {
		parsed, err := enums.ParseManagerRole(role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default access code")
		}
		if !models.ValidAccessCode(code) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("default code for %s must be 6 digits", role))
		}
		defaults[parsed] = code
	}
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:     params.Repo,
		articles: params.Articles,
		activity: params.Activity,
		defaults: defaults,
		loc:      loc,
		now:      now,
		logg:     logg,
	}, nil
}

func (s *service) Mode(ctx context.Context) (enums.Mode, error) {
	setting, err := s.repo.GetMode(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return enums.ModeBar, nil
	}
	if err != nil {
		return "", store.Classify(err, "load mode")
	}
	return setting.Mode, nil
}

func (s *service) SetMode(ctx context.Context, actorID string, mode enums.Mode) (enums.Mode, error) {
	if !mode.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "mode must be bar or snackbar")
	}
	if err := s.repo.SaveMode(ctx, &models.ModeSetting{Mode: mode}); err != nil {
		return "", store.Classify(err, "save mode")
	}
	s.record(ctx, actorID, activity.ActionModeChange, "Passage en mode "+mode.Label())
	return mode, nil
}

// record writes to the journal; a journal failure does not undo the mode
// change that already succeeded.
func (s *service) record(ctx context.Context, actorID, action, details string) {
	if err := s.activity.Record(ctx, actorID, action, details); err != nil {
		s.logg.Error(ctx, "activity.record_failed", err)
	}
}

// ManagerCodes returns the effective manager codes: stored overrides on top
// of the configured defaults.
func (s *service) ManagerCodes(ctx context.Context) (map[enums.ManagerRole]string, error) {
	out := make(map[enums.ManagerRole]string, len(s.defaults))
	for role, code := range s.defaults {
		out[role] = code
	}
	stored, err := s.repo.GetAccessCodes(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, store.Classify(err, "load access codes")
	}
	for role, code := range stored.Codes {
		out[enums.ManagerRole(role)] = code
	}
	return out, nil
}

// ReservedCodes returns every code a manager can log in with or once could:
// the configured defaults and the stored overrides.
func (s *service) ReservedCodes(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(s.defaults))
	for _, code := range s.defaults {
		out[code] = true
	}
	stored, err := s.repo.GetAccessCodes(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, store.Classify(err, "load access codes")
	}
	for _, code := range stored.Codes {
		out[code] = true
	}
	return out, nil
}

func (s *service) SetManagerCode(ctx context.Context, role enums.ManagerRole, code string) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown manager role")
	}
	if !models.ValidAccessCode(code) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Le code doit contenir exactement 6 chiffres")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.repo.GetAccessCodes(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		stored = &models.AccessCodes{Codes: map[string]string{}}
	case err != nil:
		return store.Classify(err, "load access codes")
	}
	if stored.Codes == nil {
		stored.Codes = map[string]string{}
	}
	stored.Codes[string(role)] = code
	return store.Classify(s.repo.SaveAccessCodes(ctx, stored), "save access codes")
}

// Today returns the business calendar day in the configured timezone.
func (s *service) Today() string {
	return models.DayKey(s.now(), s.loc)
}

// EnsureDailySnapshot records the stock of every article for day unless a
// snapshot already exists. The bool reports whether one was created.
func (s *service) EnsureDailySnapshot(ctx context.Context, day string) (*models.StockSnapshot, bool, error) {
	if day == "" {
		day = s.Today()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.GetSnapshot(ctx, day)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, store.Classify(err, "load stock snapshot")
	}

	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, false, store.Classify(err, "list articles")
	}
	snapshot := &models.StockSnapshot{
		Day:     day,
		Stock:   make(map[string]int, len(articles)),
		TakenAt: s.now().UTC(),
	}
	for _, article := range articles {
		snapshot.Stock[article.ID] = article.Stock
	}
	if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, false, store.Classify(err, "save stock snapshot")
	}
	return snapshot, true, nil
}

// Snapshot returns the snapshot for day, or nil when none was taken.
func (s *service) Snapshot(ctx context.Context, day string) (*models.StockSnapshot, error) {
	snapshot, err := s.repo.GetSnapshot(ctx, day)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify(err, "load stock snapshot")
	}
	return snapshot, nil
}
