package amqpfeed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

type fakeChannel struct {
	declared   []string
	bound      []string
	published  []amqp.Publishing
	cancelled  chan string
	deliveries chan amqp.Delivery
	declareErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{cancelled: make(chan string, 1), deliveries: make(chan amqp.Delivery, 4)}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(string, bool, bool, bool, bool, amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: "amq.gen-1"}, nil
}

func (f *fakeChannel) QueueBind(name, _, exchange string, _ bool, _ amqp.Table) error {
	f.bound = append(f.bound, name+"->"+exchange)
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Cancel(consumer string, _ bool) error {
	f.cancelled <- consumer
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestNewFeedDeclaresFanoutExchange(t *testing.T) {
	ch := newFakeChannel()
	if _, err := newFeed(ch, "comptoir.changes", nil); err != nil {
		t.Fatalf("new feed: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "comptoir.changes:fanout" {
		t.Fatalf("unexpected declarations %v", ch.declared)
	}
}

func TestNewFeedErrors(t *testing.T) {
	if _, err := newFeed(newFakeChannel(), "", nil); err == nil {
		t.Fatal("expected missing exchange to fail")
	}
	ch := newFakeChannel()
	ch.declareErr = errors.New("access refused")
	if _, err := newFeed(ch, "comptoir.changes", nil); err == nil {
		t.Fatal("expected declare failure to surface")
	}
}

func TestPublishEncodesChange(t *testing.T) {
	ch := newFakeChannel()
	feed, _ := newFeed(ch, "comptoir.changes", nil)

	change := store.Change{Collection: store.Articles, ID: "a1", Op: store.OpDelete, At: time.Unix(10, 0).UTC()}
	if err := feed.Publish(context.Background(), change); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(ch.published) != 1 || ch.published[0].ContentType != "application/json" {
		t.Fatalf("unexpected publishings %+v", ch.published)
	}
	var decoded store.Change
	if err := json.Unmarshal(ch.published[0].Body, &decoded); err != nil || decoded != change {
		t.Fatalf("unexpected body %s (%v)", ch.published[0].Body, err)
	}
}

func TestSubscribeRelaysAndCancels(t *testing.T) {
	ch := newFakeChannel()
	feed, _ := newFeed(ch, "comptoir.changes", nil)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(ch.bound) != 1 || ch.bound[0] != "amq.gen-1->comptoir.changes" {
		t.Fatalf("unexpected bindings %v", ch.bound)
	}

	ch.deliveries <- amqp.Delivery{Body: []byte("garbage")}
	ch.deliveries <- amqp.Delivery{Body: []byte(`{"collection":"tables","id":"t1","op":"put","at":"2026-01-01T00:00:00Z"}`)}

	select {
	case got := <-changes:
		if got.ID != "t1" || got.Collection != store.Tables {
			t.Fatalf("unexpected change %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	select {
	case <-ch.cancelled:
	case <-time.After(time.Second):
		t.Fatal("expected consumer to be cancelled")
	}
}
