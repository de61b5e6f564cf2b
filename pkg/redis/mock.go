package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewInMemory returns a Client over an in-process fake, for tests of
// packages that depend on Redis. Pub/sub only records published messages.
func NewInMemory() (*Client, *Fake) {
	fake := NewFake()
	return &Client{store: fake}, fake
}

// Fake implements the command subset used by Client.
type Fake struct {
	mu        sync.Mutex
	data      map[string]string
	hashes    map[string]map[string]string
	Published []Published
}

// Published is one message sent through Publish.
type Published struct {
	Channel string
	Message string
}

func NewFake() *Fake {
	return &Fake{
		data:   make(map[string]string),
		hashes: make(map[string]map[string]string),
	}
}

func (f *Fake) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *Fake) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *Fake) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *Fake) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *Fake) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			removed++
		}
		delete(f.data, key)
		delete(f.hashes, key)
	}
	return redis.NewIntResult(removed, nil)
}

func (f *Fake) HSet(_ context.Context, key string, values ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.hashes[key]
	if !ok {
		hash = make(map[string]string)
		f.hashes[key] = hash
	}
	var added int64
	for i := 0; i+1 < len(values); i += 2 {
		field := fmt.Sprint(values[i])
		if _, exists := hash[field]; !exists {
			added++
		}
		hash[field] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(added, nil)
}

func (f *Fake) HGet(_ context.Context, key, field string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.hashes[key][field]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *Fake) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *Fake) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, field := range fields {
		if _, ok := f.hashes[key][field]; ok {
			delete(f.hashes[key], field)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *Fake) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, Published{Channel: channel, Message: fmt.Sprint(message)})
	return redis.NewIntResult(0, nil)
}

// Messages returns a copy of everything published so far.
func (f *Fake) Messages() []Published {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Published, len(f.Published))
	copy(out, f.Published)
	return out
}
