// Package memstore keeps documents in process memory.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type Backend struct {
	mu   sync.RWMutex
	docs map[store.Name]map[string]store.Document
}

func New() *Backend {
	return &Backend{docs: make(map[store.Name]map[string]store.Document)}
}

func (b *Backend) List(_ context.Context, coll store.Name) ([]store.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]store.Document, 0, len(b.docs[coll]))
	for _, doc := range b.docs[coll] {
		out = append(out, clone(doc))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (b *Backend) Get(_ context.Context, coll store.Name, id string) (*store.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	doc, ok := b.docs[coll][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := clone(doc)
	return &out, nil
}

func (b *Backend) Put(_ context.Context, doc store.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	coll, ok := b.docs[doc.Collection]
	if !ok {
		coll = make(map[string]store.Document)
		b.docs[doc.Collection] = coll
	}
	if existing, ok := coll[doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	}
	coll[doc.ID] = clone(doc)
	return nil
}

func (b *Backend) Delete(_ context.Context, coll store.Name, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.docs[coll][id]; !ok {
		return store.ErrNotFound
	}
	delete(b.docs[coll], id)
	return nil
}

func (b *Backend) Ping(context.Context) error {
	return nil
}

func clone(doc store.Document) store.Document {
	data := make([]byte, len(doc.Data))
	copy(data, doc.Data)
	doc.Data = data
	return doc
}
