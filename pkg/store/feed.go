package store

import (
	"context"
	"sync"
	"time"
)

// Op is the kind of write a Change reports.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Change notifies subscribers that a document was written or removed.
type Change struct {
	Collection Name      `json:"collection"`
	ID         string    `json:"id"`
	Op         Op        `json:"op"`
	At         time.Time `json:"at"`
}

// Feed fans store changes out to live subscribers. Subscribe returns a
// channel that is closed once ctx is done.
type Feed interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context) (<-chan Change, error)
}

const subscriberBuffer = 64

// LocalFeed delivers changes to subscribers inside this process. Slow
// subscribers lose changes rather than block writers.
type LocalFeed struct {
	mu   sync.Mutex
	subs map[chan Change]struct{}
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[chan Change]struct{})}
}

func (f *LocalFeed) Publish(_ context.Context, change Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, subscriberBuffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, ch)
		close(ch)
		f.mu.Unlock()
	}()
	return ch, nil
}
