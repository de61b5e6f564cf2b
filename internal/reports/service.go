package reports

import (
	"context"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type ArticleSource interface {
	List(ctx context.Context) ([]models.Article, error)
}

type SnapshotSource interface {
	Snapshot(ctx context.Context, day string) (*models.StockSnapshot, error)
}

type Service interface {
	Stock(ctx context.Context) (*Report, error)
}

type service struct {
	articles  ArticleSource
	snapshots SnapshotSource
	loc       *time.Location
	now       func() time.Time
}

func NewService(articles ArticleSource, snapshots SnapshotSource, loc *time.Location, now func() time.Time) (Service, error) {
	if articles == nil || snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "report sources required")
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &service{articles: articles, snapshots: snapshots, loc: loc, now: now}, nil
}

// Stock renders today's stock report in the business timezone.
func (s *service) Stock(ctx context.Context) (*Report, error) {
	at := s.now().In(s.loc)
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, store.Classify(err, "list articles")
	}
	snapshot, err := s.snapshots.Snapshot(ctx, at.Format(models.SnapshotDayForm))
	if err != nil {
		return nil, err
	}
	report, err := RenderStock(articles, snapshot, at)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render stock report")
	}
	return report, nil
}
