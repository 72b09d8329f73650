package events

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	declaredName string
	declaredKind string
	declareErr   error
	publishErr   error
	published    []published
	closed       bool
}

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	c.declaredName = name
	c.declaredKind = kind
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisher(t *testing.T) {
	t.Run("declares a topic exchange", func(t *testing.T) {
		ch := &fakeChannel{}
		if _, err := newAMQPPublisher(ch, "ledger"); err != nil {
			t.Fatalf("newAMQPPublisher failed: %v", err)
		}
		if ch.declaredName != "ledger" || ch.declaredKind != "topic" {
			t.Errorf("declared %q of kind %q", ch.declaredName, ch.declaredKind)
		}
	})

	t.Run("declare failure closes the channel", func(t *testing.T) {
		ch := &fakeChannel{declareErr: errors.New("access refused")}
		if _, err := newAMQPPublisher(ch, "ledger"); err == nil {
			t.Fatal("expected error")
		}
		if !ch.closed {
			t.Error("expected channel to be closed")
		}
	})

	t.Run("publishes routed by type", func(t *testing.T) {
		ch := &fakeChannel{}
		p, err := newAMQPPublisher(ch, "ledger")
		if err != nil {
			t.Fatalf("newAMQPPublisher failed: %v", err)
		}

		e := New(ExpenseCreated)
		e.GroupID = 3
		e.ExpenseID = 9
		if err := p.Publish(context.Background(), e); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		if len(ch.published) != 1 {
			t.Fatalf("expected 1 message, got %d", len(ch.published))
		}
		got := ch.published[0]
		if got.exchange != "ledger" || got.key != "expense.created" {
			t.Errorf("published to %s/%s", got.exchange, got.key)
		}
		if got.msg.MessageId != e.ID || got.msg.DeliveryMode != amqp091.Persistent {
			t.Errorf("unexpected publishing: %+v", got.msg)
		}

		decoded, err := FromJSON(got.msg.Body)
		if err != nil {
			t.Fatalf("FromJSON failed: %v", err)
		}
		if decoded.ID != e.ID || decoded.GroupID != 3 || decoded.ExpenseID != 9 || decoded.Phone != "" {
			t.Errorf("unexpected body: %+v", decoded)
		}
	})

	t.Run("publish error is returned", func(t *testing.T) {
		ch := &fakeChannel{publishErr: amqp091.ErrClosed}
		p, err := newAMQPPublisher(ch, "ledger")
		if err != nil {
			t.Fatalf("newAMQPPublisher failed: %v", err)
		}
		if err := p.Publish(context.Background(), New(UserCreated)); !errors.Is(err, amqp091.ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})
}
