package catalog

import (
	"context"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// Repository persists articles.
type Repository interface {
	List(ctx context.Context) ([]models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Save(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, id string, patch map[string]any) (*models.Article, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	articles *store.Collection[models.Article, *models.Article]
}

func NewRepository(s *store.Store) Repository {
	return &repository{articles: store.NewCollection[models.Article](s, store.Articles)}
}

func (r *repository) List(ctx context.Context) ([]models.Article, error) {
	return r.articles.List(ctx)
}

func (r *repository) Get(ctx context.Context, id string) (*models.Article, error) {
	return r.articles.Get(ctx, id)
}

func (r *repository) Create(ctx context.Context, article *models.Article) error {
	article.ID = ""
	return r.articles.Add(ctx, article)
}

func (r *repository) Save(ctx context.Context, article *models.Article) error {
	return r.articles.Save(ctx, article)
}

func (r *repository) Update(ctx context.Context, id string, patch map[string]any) (*models.Article, error) {
	return r.articles.Update(ctx, id, patch)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.articles.Delete(ctx, id)
}
