package store_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
	"github.com/angelmondragon/comptoir-backend/pkg/store/memstore"
	"github.com/angelmondragon/comptoir-backend/pkg/store/storetest"
)

func TestNewRequiresBackend(t *testing.T) {
	_, err := store.New(nil)
	require.Error(t, err)
}

func TestAddAssignsIDAndUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)

	id, err := s.Add(ctx, store.Articles, map[string]any{"name": "Coca", "stock": 30})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)

	require.NoError(t, s.Update(ctx, store.Articles, id, map[string]any{"stock": 29, "unit": nil}))

	doc, err := s.Get(ctx, store.Articles, id)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(doc.Data, &fields))
	assert.Equal(t, "Coca", fields["name"])
	assert.EqualValues(t, 29, fields["stock"])
}

func TestUpdateMissingDocument(t *testing.T) {
	s := storetest.NewStore(t)
	err := s.Update(context.Background(), store.Tables, "ghost", map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestWritesArePublished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := store.NewLocalFeed()
	s := storetest.NewStore(t, store.WithFeed(feed))
	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	id, err := s.Add(ctx, store.Tables, map[string]any{"name": "T1"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, store.Tables, id))

	first := receive(t, changes)
	assert.Equal(t, store.Change{Collection: store.Tables, ID: id, Op: store.OpPut, At: first.At}, first)
	second := receive(t, changes)
	assert.Equal(t, store.OpDelete, second.Op)
}

func TestLocalFeedClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	feed := store.NewLocalFeed()
	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription channel was not closed")
	}
	require.NoError(t, feed.Publish(context.Background(), store.Change{Collection: store.Tables}))
}

func TestCollectionRoundTripNormalizes(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	articles := store.NewCollection[models.Article](s, store.Articles)

	article := &models.Article{Name: " Régab ", PriceBar: 1000, PriceSnackbar: 1200, Stock: 50}
	require.NoError(t, articles.Add(ctx, article))
	assert.Equal(t, "doc-1", article.ID)
	assert.Equal(t, "Régab", article.Name)

	got, err := articles.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultArticleUnit, got.Unit)
	assert.Equal(t, models.CurrentSchemaVersion, got.SchemaVersion)
}

func TestCollectionRejectsInvalidWrites(t *testing.T) {
	s := storetest.NewStore(t)
	articles := store.NewCollection[models.Article](s, store.Articles)

	err := articles.Add(context.Background(), &models.Article{Name: "Eau", Stock: -1})
	require.Error(t, err)
	assert.True(t, store.IsInvalidRecord(err))

	list, err := articles.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCollectionUpgradesLegacyDocumentsOnRead(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	require.NoError(t, s.Set(ctx, store.Articles, "legacy", map[string]any{"name": "Brochettes", "price": 1500, "stock": 20}))

	articles := store.NewCollection[models.Article](s, store.Articles)
	list, err := articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "legacy", list[0].ID)
	assert.Equal(t, models.Amount(1500), list[0].PriceBar)
	assert.Equal(t, models.Amount(1800), list[0].PriceSnackbar)
}

func TestCollectionReportsCorruptDocuments(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	require.NoError(t, s.Set(ctx, store.Tables, "t1", map[string]any{"name": "T1", "orders": "nope"}))

	tables := store.NewCollection[models.Table](s, store.Tables)
	_, err := tables.Get(ctx, "t1")
	require.Error(t, err)
	var invalid *store.InvalidRecordError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "t1", invalid.ID)
}

func TestCollectionListSkipsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf, Format: "json"})
	s := storetest.NewStore(t, store.WithLogger(logg))
	require.NoError(t, s.Set(ctx, store.Articles, "coca", map[string]any{"name": "Coca", "stock": 30}))
	require.NoError(t, s.Set(ctx, store.Articles, "regab", map[string]any{"name": "Régab", "stock": -1}))

	articles := store.NewCollection[models.Article](s, store.Articles)
	list, err := articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "coca", list[0].ID)
	assert.Contains(t, buf.String(), "store.record_skipped")
	assert.Contains(t, buf.String(), `"document_id":"regab"`)

	_, err = articles.Get(ctx, "regab")
	assert.True(t, store.IsInvalidRecord(err))
}

func TestCollectionUpdateValidatesMergedRecord(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewStore(t)
	articles := store.NewCollection[models.Article](s, store.Articles)
	article := &models.Article{Name: "Coca", PriceBar: 500, PriceSnackbar: 600, Stock: 30}
	require.NoError(t, articles.Add(ctx, article))

	updated, err := articles.Update(ctx, article.ID, map[string]any{"priceSnackbar": 650, "id": "hijack"})
	require.NoError(t, err)
	assert.Equal(t, models.Amount(650), updated.PriceSnackbar)
	assert.Equal(t, article.ID, updated.ID)

	_, err = articles.Update(ctx, article.ID, map[string]any{"stock": -5})
	assert.True(t, store.IsInvalidRecord(err))

	current, err := articles.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, current.Stock)
}

func TestStoreWrapsBackendFailures(t *testing.T) {
	boom := errors.New("connection reset")
	backend := &storetest.FailingBackend{Backend: memstore.New(), Err: boom, FailPut: true}
	s, err := store.New(backend)
	require.NoError(t, err)

	_, err = s.Add(context.Background(), store.Payments, map[string]any{"amount": 1})
	assert.ErrorIs(t, err, boom)
}

func TestParseName(t *testing.T) {
	name, err := store.ParseName("activity_logs")
	require.NoError(t, err)
	assert.Equal(t, store.ActivityLogs, name)
	_, err = store.ParseName("bar_articles")
	assert.Error(t, err)
}

func TestMergeFieldsRejectsNonObjects(t *testing.T) {
	_, err := store.MergeFields(json.RawMessage(`[1,2]`), map[string]any{"a": 1})
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan store.Change) store.Change {
	t.Helper()
	select {
	case change := <-ch:
		return change
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return store.Change{}
	}
}

func TestClassify(t *testing.T) {
	if store.Classify(nil, "x") != nil {
		t.Fatal("nil should stay nil")
	}
	if code := pkgerrors.CodeOf(store.Classify(fmt.Errorf("get: %w", store.ErrNotFound), "load article")); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %s", code)
	}
	invalid := &store.InvalidRecordError{Collection: store.Articles, Err: (&models.Article{}).Validate()}
	classified := pkgerrors.As(store.Classify(invalid, "save article"))
	if classified == nil || classified.Code() != pkgerrors.CodeValidation || classified.Details() == nil {
		t.Fatalf("expected validation error with details, got %v", classified)
	}
	if code := pkgerrors.CodeOf(store.Classify(errors.New("connection refused"), "list")); code != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %s", code)
	}
	conflict := pkgerrors.New(pkgerrors.CodeConflict, "taken")
	if store.Classify(conflict, "x") != conflict {
		t.Fatal("typed errors should pass through")
	}
}
