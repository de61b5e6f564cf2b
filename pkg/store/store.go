// Package store is the persistence abstraction: named collections of JSON
// documents behind a small Backend interface, with the concrete backend and
// change feed chosen at startup.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/comptoir-backend/pkg/logger"
)

// Name identifies a collection.
type Name string

const (
	Articles       Name = "articles"
	Tables         Name = "tables"
	Payments       Name = "payments"
	Employees      Name = "employees"
	ActivityLogs   Name = "activity_logs"
	Settings       Name = "settings"
	StockSnapshots Name = "stock_snapshots"
)

// Collections lists every collection the service reads or writes.
var Collections = []Name{Articles, Tables, Payments, Employees, ActivityLogs, Settings, StockSnapshots}

// ParseName validates a collection name coming from a client.
func ParseName(value string) (Name, error) {
	for _, candidate := range Collections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", value)
}

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one stored JSON value.
type Document struct {
	Collection Name
	ID         string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Backend is implemented by each storage engine. Put is an upsert that keeps
// the original CreatedAt of an existing document. List returns documents
// ordered by CreatedAt then ID.
type Backend interface {
	List(ctx context.Context, coll Name) ([]Document, error)
	Get(ctx context.Context, coll Name, id string) (*Document, error)
	Put(ctx context.Context, doc Document) error
	Delete(ctx context.Context, coll Name, id string) error
	Ping(ctx context.Context) error
}

// Store is the single persistence entry point injected into services.
type Store struct {
	backend Backend
	feed    Feed
	logg    *logger.Logger
	now     func() time.Time
	newID   func() string
}

// Option customises a Store.
type Option func(*Store)

// WithFeed publishes a Change after every successful write.
func WithFeed(feed Feed) Option {
	return func(s *Store) { s.feed = feed }
}

// WithLogger reports documents skipped while listing a collection.
func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) { s.logg = logg }
}

// WithIDGenerator overrides document id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store backend required")
	}
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	return s, nil
}

// Feed returns the configured change feed, or nil.
func (s *Store) Feed() Feed {
	return s.feed
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) List(ctx context.Context, coll Name) ([]Document, error) {
	docs, err := s.backend.List(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, coll Name, id string) (*Document, error) {
	doc, err := s.backend.Get(ctx, coll, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", coll, id, err)
	}
	return doc, nil
}

// Add stores value under a freshly generated id and returns it.
func (s *Store) Add(ctx context.Context, coll Name, value any) (string, error) {
	id := s.newID()
	if err := s.Set(ctx, coll, id, value); err != nil {
		return "", err
	}
	return id, nil
}

// Set writes value under id, replacing any previous document.
func (s *Store) Set(ctx context.Context, coll Name, id string, value any) error {
	if id == "" {
		return fmt.Errorf("set %s: id required", coll)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", coll, id, err)
	}
	return s.put(ctx, coll, id, data)
}

// Update merges patch into the top-level fields of an existing document.
// A nil value in patch removes the field.
func (s *Store) Update(ctx context.Context, coll Name, id string, patch map[string]any) error {
	doc, err := s.Get(ctx, coll, id)
	if err != nil {
		return err
	}
	merged, err := MergeFields(doc.Data, patch)
	if err != nil {
		return fmt.Errorf("merge %s/%s: %w", coll, id, err)
	}
	return s.put(ctx, coll, id, merged)
}

func (s *Store) Delete(ctx context.Context, coll Name, id string) error {
	if err := s.backend.Delete(ctx, coll, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	s.publish(ctx, Change{Collection: coll, ID: id, Op: OpDelete, At: s.now().UTC()})
	return nil
}

func (s *Store) put(ctx context.Context, coll Name, id string, data []byte) error {
	now := s.now().UTC()
	doc := Document{Collection: coll, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
	if err := s.backend.Put(ctx, doc); err != nil {
		return fmt.Errorf("put %s/%s: %w", coll, id, err)
	}
	s.publish(ctx, Change{Collection: coll, ID: id, Op: OpPut, At: now})
	return nil
}

// publish is best effort: a feed outage must not fail a committed write.
func (s *Store) publish(ctx context.Context, change Change) {
	if s.feed == nil {
		return
	}
	_ = s.feed.Publish(ctx, change)
}
