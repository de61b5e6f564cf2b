package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/internal/catalog"
	"github.com/angelmondragon/comptoir-backend/internal/ledger"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/metrics"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
	"github.com/angelmondragon/comptoir-backend/pkg/store/storetest"
)

type fixedMode struct {
	mode enums.Mode
}

func (f *fixedMode) Mode(context.Context) (enums.Mode, error) {
	return f.mode, nil
}

type failingSaveRepo struct {
	Repository
}

func (failingSaveRepo) Save(context.Context, *models.Table) error {
	return errors.New("disk full")
}

type fixture struct {
	svc      Service
	repo     Repository
	catalog  catalog.Service
	ledger   ledger.Service
	activity activity.Service
	mode     *fixedMode
	article  *models.Article
	table    *models.Table
}

var fixtureNow = time.Date(2026, 8, 2, 19, 45, 0, 0, time.UTC)

func newFixture(t *testing.T, wrap func(Repository) Repository) *fixture {
	t.Helper()
	ctx := context.Background()
	s := storetest.NewStore(t)
	clock := func() time.Time { return fixtureNow }

	act, err := activity.NewService(activity.NewRepository(s), clock)
	require.NoError(t, err)
	cat, err := catalog.NewService(catalog.NewRepository(s), act, nil)
	require.NoError(t, err)
	led, err := ledger.NewService(ledger.NewRepository(s), time.UTC, clock)
	require.NoError(t, err)

	repo := NewRepository(s)
	if wrap != nil {
		repo = wrap(repo)
	}
	f := &fixture{repo: repo, catalog: cat, ledger: led, activity: act, mode: &fixedMode{mode: enums.ModeBar}}
	f.svc, err = NewService(ServiceParams{
		Repo:     repo,
		Catalog:  cat,
		Modes:    f.mode,
		Payments: led,
		Activity: act,
		Metrics:  metrics.NewSalesMetrics(prometheus.NewRegistry()),
		Now:      clock,
	})
	require.NoError(t, err)

	f.article, err = cat.Create(ctx, "patron", catalog.CreateArticleInput{Name: "Régab", PriceBar: 1000, PriceSnackbar: 1200, Stock: 10})
	require.NoError(t, err)
	f.table, err = NewRepository(s).Get(ctx, mustCreateTable(t, NewRepository(s)))
	require.NoError(t, err)
	return f
}

func mustCreateTable(t *testing.T, repo Repository) string {
	t.Helper()
	table := &models.Table{Name: "Table 1"}
	require.NoError(t, repo.Create(context.Background(), table))
	return table.ID
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	article, err := f.catalog.Get(context.Background(), f.article.ID)
	require.NoError(t, err)
	return article.Stock
}

func (f *fixture) actions(t *testing.T) map[string]string {
	t.Helper()
	logs, err := f.activity.List(context.Background(), activity.ListParams{})
	require.NoError(t, err)
	out := map[string]string{}
	for _, entry := range logs.Items {
		out[entry.Action] = entry.Details
	}
	return out
}

func TestAddLineDecrementsStockAndLogs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	table, err := f.svc.AddLine(ctx, "doc-emp", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, models.Amount(3000), table.Total)
	assert.Equal(t, enums.TableStatusOccupied, table.Status)
	assert.Equal(t, 7, f.stock(t))
	assert.Equal(t, "3x Régab ajouté à Table 1", f.actions(t)[activity.ActionOrderAdd])

	stored, err := f.svc.GetTable(ctx, f.table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(3000), stored.Total)
}

func TestAddLineInsufficientStockChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.AddLine(ctx, "patron", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 11})
	assert.True(t, errors.Is(err, catalog.ErrInsufficientStock))
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, 10, f.stock(t))

	table, err := f.svc.GetTable(ctx, f.table.ID)
	require.NoError(t, err)
	assert.Empty(t, table.Orders)
	assert.NotContains(t, f.actions(t), activity.ActionOrderAdd)
}

func TestAddLineUnknownArticle(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.AddLine(context.Background(), "patron", f.table.ID, AddLineInput{ArticleID: "ghost", Quantity: 1})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestAddLineRestoresStockWhenTableSaveFails(t *testing.T) {
	f := newFixture(t, func(r Repository) Repository { return failingSaveRepo{Repository: r} })
	_, err := f.svc.AddLine(context.Background(), "patron", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 2})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.Equal(t, 10, f.stock(t))
}

func TestRemoveLineRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.AddLine(ctx, "patron", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 4})
	require.NoError(t, err)

	table, err := f.svc.RemoveLine(ctx, "patron", f.table.ID, f.article.ID)
	require.NoError(t, err)
	assert.Empty(t, table.Orders)
	assert.Equal(t, enums.TableStatusAvailable, table.Status)
	assert.Equal(t, 10, f.stock(t))
	assert.Equal(t, "4x Régab annulé de Table 1", f.actions(t)[activity.ActionOrderCancel])
}

func TestRemoveMissingLineIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	table, err := f.svc.RemoveLine(context.Background(), "patron", f.table.ID, "ghost")
	require.NoError(t, err)
	assert.Empty(t, table.Orders)
	assert.NotContains(t, f.actions(t), activity.ActionOrderCancel)
}

func TestRemoveLineOfDeletedArticle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.AddLine(ctx, "patron", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.catalog.Delete(ctx, "patron", f.article.ID))

	table, err := f.svc.RemoveLine(ctx, "patron", f.table.ID, f.article.ID)
	require.NoError(t, err)
	assert.Empty(t, table.Orders)
}

func TestPayRecordsPaymentAndResetsTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.AddLine(ctx, "patron", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 2})
	require.NoError(t, err)

	f.mode.mode = enums.ModeSnackbar
	result, err := f.svc.Pay(ctx, "gerante1", f.table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Amount(2000), result.Payment.Amount)
	assert.Equal(t, enums.ModeSnackbar, result.Payment.Mode)
	assert.Equal(t, "gerante1", result.Payment.RecordedBy)
	assert.NotEmpty(t, result.Payment.ID)
	assert.Empty(t, result.Table.Orders)
	assert.Equal(t, 8, f.stock(t))
	assert.Equal(t, "Table 1: 2000 FCFA (Mode: Snackbar)", f.actions(t)[activity.ActionPayment])

	summary, err := f.ledger.List(ctx, ledger.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)

	_, err = f.svc.Pay(ctx, "gerante1", f.table.ID)
	assert.True(t, errors.Is(err, ErrNothingToPay))
}

func TestDeleteTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	_, err := f.svc.AddLine(ctx, "patron", f.table.ID, AddLineInput{ArticleID: f.article.ID, Quantity: 1})
	require.NoError(t, err)

	err = f.svc.DeleteTable(ctx, "patron", f.table.ID)
	assert.True(t, errors.Is(err, ErrOccupiedTableDeletion))
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = f.svc.Pay(ctx, "patron", f.table.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteTable(ctx, "patron", f.table.ID))
	assert.Equal(t, `Table "Table 1" supprimée`, f.actions(t)[activity.ActionTableDelete])

	_, err = f.repo.Get(ctx, f.table.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCreateTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.CreateTable(ctx, "patron", CreateTableInput{Name: "   "})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	table, err := f.svc.CreateTable(ctx, "patron", CreateTableInput{Name: " Terrasse "})
	require.NoError(t, err)
	assert.Equal(t, "Terrasse", table.Name)
	assert.Equal(t, enums.TableStatusAvailable, table.Status)
	assert.Equal(t, `Nouvelle table "Terrasse" créée`, f.actions(t)[activity.ActionTableCreate])

	tables, err := f.svc.ListTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}
