package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type pubsubClient interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channel string) (<-chan string, error)
	ChangesChannel() string
}

// Feed shares store changes between processes over Redis pub/sub.
type Feed struct {
	client pubsubClient
	logg   *logger.Logger
}

func NewFeed(client pubsubClient, logg *logger.Logger) (*Feed, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Feed{client: client, logg: logg}, nil
}

func (f *Feed) Publish(ctx context.Context, change store.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.client.ChangesChannel(), string(payload))
}

func (f *Feed) Subscribe(ctx context.Context) (<-chan store.Change, error) {
	messages, err := f.client.Subscribe(ctx, f.client.ChangesChannel())
	if err != nil {
		return nil, err
	}
	return relay(ctx, f.logg, messages), nil
}

// relay decodes raw payloads into changes, skipping malformed ones.
func relay(ctx context.Context, logg *logger.Logger, messages <-chan string) <-chan store.Change {
	out := make(chan store.Change)
	go func() {
		defer close(out)
		for payload := range messages {
			var change store.Change
			if err := json.Unmarshal([]byte(payload), &change); err != nil {
				logg.Warn(ctx, "feed.decode_failed")
				continue
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
