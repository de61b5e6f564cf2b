// Package storetest holds helpers shared by store backend and service tests.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/store"
	"github.com/angelmondragon/comptoir-backend/pkg/store/memstore"
)

// NewStore returns a Store over a fresh in-memory backend with a
// deterministic id sequence (doc-1, doc-2, ...).
func NewStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	seq := 0
	base := []store.Option{store.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("doc-%d", seq)
	})}
	s, err := store.New(memstore.New(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

// FailingBackend wraps a backend and fails the selected operations.
type FailingBackend struct {
	store.Backend
	Err        error
	FailList   bool
	FailGet    bool
	FailPut    bool
	FailDelete bool
}

func (f *FailingBackend) List(ctx context.Context, coll store.Name) ([]store.Document, error) {
	if f.FailList {
		return nil, f.Err
	}
	return f.Backend.List(ctx, coll)
}

func (f *FailingBackend) Get(ctx context.Context, coll store.Name, id string) (*store.Document, error) {
	if f.FailGet {
		return nil, f.Err
	}
	return f.Backend.Get(ctx, coll, id)
}

func (f *FailingBackend) Put(ctx context.Context, doc store.Document) error {
	if f.FailPut {
		return f.Err
	}
	return f.Backend.Put(ctx, doc)
}

func (f *FailingBackend) Delete(ctx context.Context, coll store.Name, id string) error {
	if f.FailDelete {
		return f.Err
	}
	return f.Backend.Delete(ctx, coll, id)
}

// RunBackendContract checks the behaviour every Backend must share.
func RunBackendContract(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	t.Run("get missing", func(t *testing.T) {
		b := newBackend(t)
		if _, err := b.Get(ctx, store.Articles, "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		b := newBackend(t)
		if err := b.Delete(ctx, store.Articles, "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		b := newBackend(t)
		doc := store.Document{Collection: store.Articles, ID: "a1", Data: json.RawMessage(`{"name":"Régab"}`), CreatedAt: t0, UpdatedAt: t0}
		if err := b.Put(ctx, doc); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := b.Get(ctx, store.Articles, "a1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertJSON(t, `{"name":"Régab"}`, got.Data)
		if got.Collection != store.Articles || got.ID != "a1" {
			t.Fatalf("unexpected identity %s/%s", got.Collection, got.ID)
		}
	})

	t.Run("put keeps created at", func(t *testing.T) {
		b := newBackend(t)
		first := store.Document{Collection: store.Tables, ID: "t1", Data: json.RawMessage(`{"name":"T1"}`), CreatedAt: t0, UpdatedAt: t0}
		later := t0.Add(time.Hour)
		second := store.Document{Collection: store.Tables, ID: "t1", Data: json.RawMessage(`{"name":"T1bis"}`), CreatedAt: later, UpdatedAt: later}
		if err := b.Put(ctx, first); err != nil {
			t.Fatalf("put first: %v", err)
		}
		if err := b.Put(ctx, second); err != nil {
			t.Fatalf("put second: %v", err)
		}
		got, err := b.Get(ctx, store.Tables, "t1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		assertJSON(t, `{"name":"T1bis"}`, got.Data)
		if !got.CreatedAt.Equal(t0) {
			t.Fatalf("expected created at %v, got %v", t0, got.CreatedAt)
		}
		if !got.UpdatedAt.Equal(later) {
			t.Fatalf("expected updated at %v, got %v", later, got.UpdatedAt)
		}
	})

	t.Run("list is ordered and scoped", func(t *testing.T) {
		b := newBackend(t)
		docs := []store.Document{
			{Collection: store.Payments, ID: "p2", Data: json.RawMessage(`{"n":2}`), CreatedAt: t0.Add(time.Minute), UpdatedAt: t0},
			{Collection: store.Payments, ID: "p1", Data: json.RawMessage(`{"n":1}`), CreatedAt: t0, UpdatedAt: t0},
			{Collection: store.Payments, ID: "p0", Data: json.RawMessage(`{"n":0}`), CreatedAt: t0, UpdatedAt: t0},
			{Collection: store.Employees, ID: "e1", Data: json.RawMessage(`{"n":9}`), CreatedAt: t0, UpdatedAt: t0},
		}
		for _, doc := range docs {
			if err := b.Put(ctx, doc); err != nil {
				t.Fatalf("put %s: %v", doc.ID, err)
			}
		}
		got, err := b.List(ctx, store.Payments)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var ids []string
		for _, doc := range got {
			ids = append(ids, doc.ID)
		}
		if fmt.Sprint(ids) != "[p0 p1 p2]" {
			t.Fatalf("unexpected order %v", ids)
		}
		empty, err := b.List(ctx, store.ActivityLogs)
		if err != nil {
			t.Fatalf("list empty: %v", err)
		}
		if len(empty) != 0 {
			t.Fatalf("expected no documents, got %d", len(empty))
		}
	})

	t.Run("delete removes", func(t *testing.T) {
		b := newBackend(t)
		doc := store.Document{Collection: store.Employees, ID: "e1", Data: json.RawMessage(`{}`), CreatedAt: t0, UpdatedAt: t0}
		if err := b.Put(ctx, doc); err != nil {
			t.Fatalf("put: %v", err)
		}
		if err := b.Delete(ctx, store.Employees, "e1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := b.Get(ctx, store.Employees, "e1"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := newBackend(t).Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})
}

func assertJSON(t *testing.T, want string, got json.RawMessage) {
	t.Helper()
	var w, g any
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode got %q: %v", got, err)
	}
	if fmt.Sprint(w) != fmt.Sprint(g) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
