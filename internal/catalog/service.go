package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// ErrInsufficientStock is returned when a stock decrement would go negative.
var ErrInsufficientStock = pkgerrors.New(pkgerrors.CodeStateConflict, "Stock insuffisant")

// Service defines catalog operations.
type Service interface {
	List(ctx context.Context, params ListParams) ([]models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, actorID string, input CreateArticleInput) (*models.Article, error)
	Update(ctx context.Context, actorID, id string, input UpdateArticleInput) (*models.Article, error)
	Delete(ctx context.Context, actorID, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (*models.Article, error)
	Seed(ctx context.Context) (int, error)
	Options() Options
}

type service struct {
	repo     Repository
	activity activity.Recorder
	logg     *logger.Logger
	mu       sync.Mutex
}

// NewService wires catalog dependencies.
func NewService(repo Repository, recorder activity.Recorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, activity: recorder, logg: logg}, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Article, error) {
	articles, err := s.repo.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list articles")
	}
	search := strings.ToLower(strings.TrimSpace(params.Search))
	category := strings.TrimSpace(params.Category)

	out := make([]models.Article, 0, len(articles))
	for _, article := range articles {
		if search != "" && !strings.Contains(strings.ToLower(article.Name), search) {
			continue
		}
		if category != "" && !strings.EqualFold(article.CategoryLabel(), category) {
			continue
		}
		out = append(out, article)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, store.Classify(err, "load article")
	}
	return article, nil
}

func (s *service) Create(ctx context.Context, actorID string, input CreateArticleInput) (*models.Article, error) {
	article := &models.Article{
		Name:          input.Name,
		Category:      input.Category,
		PriceBar:      input.PriceBar,
		PriceSnackbar: input.PriceSnackbar,
		Stock:         input.Stock,
		Unit:          input.Unit,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, store.Classify(err, "create article")
	}
	s.record(ctx, actorID, activity.ActionArticleAdd, fmt.Sprintf("Nouvel article %q ajouté", article.Name))
	return article, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, input UpdateArticleInput) (*models.Article, error) {
	patch := input.patch()
	if len(patch) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	s.mu.Lock()
	article, err := s.repo.Update(ctx, id, patch)
	s.mu.Unlock()
	if err != nil {
		return nil, store.Classify(err, "update article")
	}
	s.record(ctx, actorID, activity.ActionArticleUpdate, fmt.Sprintf("Article %q modifié", article.Name))
	return article, nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return store.Classify(err, "load article")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return store.Classify(err, "delete article")
	}
	s.record(ctx, actorID, activity.ActionArticleDelete, fmt.Sprintf("Article %q supprimé", article.Name))
	return nil
}

// AdjustStock adds delta to the article stock. A result below zero fails
// with ErrInsufficientStock and leaves the article untouched.
func (s *service) AdjustStock(ctx context.Context, id string, delta int) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, store.Classify(err, "load article")
	}
	if article.Stock+delta < 0 {
		return nil, ErrInsufficientStock
	}
	article.Stock += delta
	if err := s.repo.Save(ctx, article); err != nil {
		return nil, store.Classify(err, "save article stock")
	}
	return article, nil
}

// Seed inserts the sample articles when the catalog is empty and reports
// how many were added.
func (s *service) Seed(ctx context.Context) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, store.Classify(err, "list articles")
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range sampleArticles {
		article := sampleArticles[i]
		if err := s.repo.Create(ctx, &article); err != nil {
			return i, store.Classify(err, "seed article")
		}
	}
	s.logg.Info(ctx, "catalog.seeded")
	return len(sampleArticles), nil
}

func (s *service) Options() Options {
	return Options{
		Categories: append([]string(nil), models.ArticleCategories...),
		Units:      append([]string(nil), models.ArticleUnits...),
	}
}

// record writes to the journal; a journal failure does not undo the
// mutation that already succeeded.
func (s *service) record(ctx context.Context, actorID, action, details string) {
	if err := s.activity.Record(ctx, actorID, action, details); err != nil {
		s.logg.Error(ctx, "activity.record_failed", err)
	}
}
