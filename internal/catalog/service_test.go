package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
	"github.com/angelmondragon/comptoir-backend/pkg/store/storetest"
)

func newTestService(t *testing.T) (Service, activity.Service) {
	t.Helper()
	s := storetest.NewStore(t)
	act, err := activity.NewService(activity.NewRepository(s), func() time.Time {
		return time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(s), act, nil)
	require.NoError(t, err)
	return svc, act
}

func TestCreateUpdateDeleteLogsActivity(t *testing.T) {
	ctx := context.Background()
	svc, act := newTestService(t)

	article, err := svc.Create(ctx, "patron", CreateArticleInput{Name: " Régab ", Category: "Boissons", PriceBar: 1000, PriceSnackbar: 1200, Stock: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, article.ID)
	assert.Equal(t, "Régab", article.Name)
	assert.Equal(t, models.DefaultArticleUnit, article.Unit)

	price := models.Amount(1100)
	updated, err := svc.Update(ctx, "gerante1", article.ID, UpdateArticleInput{PriceBar: &price})
	require.NoError(t, err)
	assert.Equal(t, models.Amount(1100), updated.PriceBar)
	assert.Equal(t, 50, updated.Stock)

	require.NoError(t, svc.Delete(ctx, "patron", article.ID))
	_, err = svc.Get(ctx, article.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	logs, err := act.List(ctx, activity.ListParams{})
	require.NoError(t, err)
	require.Len(t, logs.Items, 3)
	details := map[string]string{}
	for _, entry := range logs.Items {
		details[entry.Action] = entry.Details
	}
	assert.Equal(t, `Nouvel article "Régab" ajouté`, details[activity.ActionArticleAdd])
	assert.Equal(t, `Article "Régab" modifié`, details[activity.ActionArticleUpdate])
	assert.Equal(t, `Article "Régab" supprimé`, details[activity.ActionArticleDelete])
}

func TestCreateRejectsInvalidArticle(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "patron", CreateArticleInput{Name: "  ", Stock: -1})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.NotNil(t, typed.Details())
}

func TestUpdateRequiresFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "patron", "a1", UpdateArticleInput{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestUpdateMissingArticle(t *testing.T) {
	svc, _ := newTestService(t)
	name := "Fanta"
	_, err := svc.Update(context.Background(), "patron", "ghost", UpdateArticleInput{Name: &name})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListFiltersBySearchAndCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	added, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	_, err = svc.Create(ctx, "patron", CreateArticleInput{Name: "Arachides"})
	require.NoError(t, err)

	drinks, err := svc.List(ctx, ListParams{Category: "boissons"})
	require.NoError(t, err)
	assert.Len(t, drinks, 3)

	found, err := svc.List(ctx, ListParams{Search: "BRAIS"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Poisson braisé", found[0].Name)

	uncategorized, err := svc.List(ctx, ListParams{Category: models.UncategorizedLabel})
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "Arachides", uncategorized[0].Name)
}

func TestSeedIsNoopWhenCatalogHasArticles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Create(ctx, "patron", CreateArticleInput{Name: "Fanta"})
	require.NoError(t, err)

	added, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	article, err := svc.Create(ctx, "patron", CreateArticleInput{Name: "Coca", Stock: 2})
	require.NoError(t, err)

	got, err := svc.AdjustStock(ctx, article.ID, -2)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)

	_, err = svc.AdjustStock(ctx, article.ID, -1)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	got, err = svc.AdjustStock(ctx, article.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestListKeepsWorkingAroundABrokenArticle(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	require.NoError(t, s.Set(ctx, store.Articles, "coca", map[string]any{"name": "Coca", "stock": 30}))
	require.NoError(t, s.Set(ctx, store.Articles, "regab", map[string]any{"name": "Régab", "stock": -1}))

	act, err := activity.NewService(activity.NewRepository(s), time.Now)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(s), act, nil)
	require.NoError(t, err)

	list, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Coca", list[0].Name)
}

func TestOptionsReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t)
	opts := svc.Options()
	opts.Categories[0] = "Changed"
	assert.Equal(t, "Boissons", svc.Options().Categories[0])
	assert.Contains(t, opts.Units, "bouteille")
}
