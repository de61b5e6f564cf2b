package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is implemented by every persisted model. Normalize fills defaults
// and upgrades legacy shapes; Validate reports every invalid field.
type Record interface {
	DocumentID() string
	SetDocumentID(id string)
	Normalize()
	Validate() error
}

// InvalidRecordError reports a document rejected at the storage boundary.
type InvalidRecordError struct {
	Collection Name
	ID         string
	Err        error
}

func (e *InvalidRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s record: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("invalid %s record %s: %v", e.Collection, e.ID, e.Err)
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Err
}

// Collection is a typed view of one collection. Every record read or written
// through it is normalized and validated.
type Collection[T any, P interface {
	*T
	Record
}] struct {
	store *Store
	name  Name
}

func NewCollection[T any, P interface {
	*T
	Record
}](s *Store, name Name) *Collection[T, P] {
	return &Collection[T, P]{store: s, name: name}
}

// Name returns the collection name.
func (c *Collection[T, P]) Name() Name {
	return c.name
}

// List returns every readable record. Documents rejected at the boundary are
// logged and left out; Get on such an id still reports the violation.
func (c *Collection[T, P]) List(ctx context.Context) ([]T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := c.decode(doc)
		if IsInvalidRecord(err) {
			c.skip(ctx, doc.ID, err)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (c *Collection[T, P]) skip(ctx context.Context, id string, err error) {
	logg := c.store.logg
	ctx = logg.WithFields(ctx, map[string]any{
		"collection":  string(c.name),
		"document_id": id,
	})
	logg.Error(ctx, "store.record_skipped", err)
}

func (c *Collection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	return c.decode(*doc)
}

// Add assigns an id when the record has none and stores it.
func (c *Collection[T, P]) Add(ctx context.Context, rec *T) error {
	p := P(rec)
	if p.DocumentID() == "" {
		p.SetDocumentID(c.store.newID())
	}
	return c.Save(ctx, rec)
}

// Save writes the full record under its id.
func (c *Collection[T, P]) Save(ctx context.Context, rec *T) error {
	p := P(rec)
	if p.DocumentID() == "" {
		return fmt.Errorf("save %s: id required", c.name)
	}
	if err := c.check(p); err != nil {
		return err
	}
	return c.store.Set(ctx, c.name, p.DocumentID(), rec)
}

// Update merges patch into the stored record, validates the result and
// writes it back.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch map[string]any) (*T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	delete(patch, "id")
	merged, err := MergeFields(doc.Data, patch)
	if err != nil {
		return nil, fmt.Errorf("merge %s/%s: %w", c.name, id, err)
	}
	doc.Data = merged
	rec, err := c.decode(*doc)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, c.name, id, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

func (c *Collection[T, P]) decode(doc Document) (*T, error) {
	rec := new(T)
	if err := json.Unmarshal(doc.Data, rec); err != nil {
		return nil, &InvalidRecordError{Collection: c.name, ID: doc.ID, Err: err}
	}
	p := P(rec)
	p.SetDocumentID(doc.ID)
	if err := c.check(p); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Collection[T, P]) check(p P) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return &InvalidRecordError{Collection: c.name, ID: p.DocumentID(), Err: err}
	}
	return nil
}

// IsInvalidRecord reports whether err came from boundary validation.
func IsInvalidRecord(err error) bool {
	var target *InvalidRecordError
	return errors.As(err, &target)
}
