// Package redisstore keeps each collection in one Redis hash keyed by
// document id.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/redis"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

// hashClient is the subset of the redis client the backend needs.
type hashClient interface {
	HSet(ctx context.Context, key, field, value string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) (int64, error)
	DocumentKey(collection string) string
	Ping(ctx context.Context) error
}

type envelope struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type Backend struct {
	client hashClient
	logg   *logger.Logger
}

func New(client hashClient, logg *logger.Logger) (*Backend, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Backend{client: client, logg: logg}, nil
}

func (b *Backend) List(ctx context.Context, coll store.Name) ([]store.Document, error) {
	fields, err := b.client.HGetAll(ctx, b.client.DocumentKey(string(coll)))
	if err != nil {
		return nil, err
	}
	out := make([]store.Document, 0, len(fields))
	for id, raw := range fields {
		doc, err := decode(coll, id, raw)
		if err != nil {
			b.logg.Error(b.logg.WithField(ctx, "collection", string(coll)), "redisstore.envelope_skipped", err)
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (b *Backend) Get(ctx context.Context, coll store.Name, id string) (*store.Document, error) {
	raw, err := b.client.HGet(ctx, b.client.DocumentKey(string(coll)), id)
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc, err := decode(coll, id, raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *Backend) Put(ctx context.Context, doc store.Document) error {
	if !json.Valid(doc.Data) {
		return fmt.Errorf("document %s/%s is not valid json", doc.Collection, doc.ID)
	}
	existing, err := b.Get(ctx, doc.Collection, doc.ID)
	switch {
	case err == nil:
		doc.CreatedAt = existing.CreatedAt
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	payload, err := json.Marshal(envelope{Data: doc.Data, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt})
	if err != nil {
		return err
	}
	return b.client.HSet(ctx, b.client.DocumentKey(string(doc.Collection)), doc.ID, string(payload))
}

func (b *Backend) Delete(ctx context.Context, coll store.Name, id string) error {
	removed, err := b.client.HDel(ctx, b.client.DocumentKey(string(coll)), id)
	if err != nil {
		return err
	}
	if removed == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

func decode(coll store.Name, id, raw string) (store.Document, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return store.Document{}, fmt.Errorf("decode %s/%s envelope: %w", coll, id, err)
	}
	return store.Document{
		Collection: coll,
		ID:         id,
		Data:       env.Data,
		CreatedAt:  env.CreatedAt,
		UpdatedAt:  env.UpdatedAt,
	}, nil
}
