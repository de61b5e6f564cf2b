// Package amqpfeed broadcasts store changes through a RabbitMQ fanout
// exchange so every API replica can stream them.
package amqpfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Feed struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logg     *logger.Logger
	mu       sync.Mutex
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string, logg *logger.Logger) (*Feed, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	feed, err := newFeed(ch, exchange, logg)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	feed.conn = conn
	return feed, nil
}

func newFeed(ch channel, exchange string, logg *logger.Logger) (*Feed, error) {
	if exchange == "" {
		return nil, errors.New("amqp exchange required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Feed{ch: ch, exchange: exchange, logg: logg}, nil
}

func (f *Feed) Publish(ctx context.Context, change store.Change) error {
	body, err := json.Marshal(change)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ch.PublishWithContext(ctx, f.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Subscribe binds a private auto-delete queue to the exchange. The consumer
// is cancelled once ctx is done.
func (f *Feed) Subscribe(ctx context.Context) (<-chan store.Change, error) {
	f.mu.Lock()
	q, err := f.ch.QueueDeclare("", false, true, true, false, nil)
	if err == nil {
		err = f.ch.QueueBind(q.Name, "", f.exchange, false, nil)
	}
	consumer := "comptoir-" + uuid.NewString()
	var deliveries <-chan amqp.Delivery
	if err == nil {
		deliveries, err = f.ch.Consume(q.Name, consumer, true, true, false, false, nil)
	}
	f.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", f.exchange, err)
	}

	out := make(chan store.Change)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				f.mu.Lock()
				_ = f.ch.Cancel(consumer, false)
				f.mu.Unlock()
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var change store.Change
				if err := json.Unmarshal(d.Body, &change); err != nil {
					f.logg.Warn(ctx, "feed.decode_failed")
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
				}
			}
		}
	}()
	return out, nil
}

// Ping reports whether the broker connection is still open.
func (f *Feed) Ping(context.Context) error {
	if f.conn != nil && f.conn.IsClosed() {
		return errors.New("amqp connection is closed")
	}
	return nil
}

func (f *Feed) Close() error {
	var err error
	if f.ch != nil {
		err = f.ch.Close()
	}
	if f.conn != nil {
		if cerr := f.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
