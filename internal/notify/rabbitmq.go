package notify

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// exchangeName is the fanout exchange all change events flow through.
const exchangeName = "comanda.changes"

// RabbitBroadcaster publishes change events to a RabbitMQ fanout exchange so
// that every connected UI surface (kitchen view, takeaway view, dashboard,
// customer tracker) sees the same re-fetch signal.
//
// The broadcaster owns its channel and is explicitly constructed and closed
// by whichever process wires the core together.
type RabbitBroadcaster struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ Broadcaster = (*RabbitBroadcaster)(nil)

// DialRabbit connects to RabbitMQ, opens a channel and declares the fanout
// exchange.
func DialRabbit(url string) (*RabbitBroadcaster, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	return &RabbitBroadcaster{conn: conn, ch: ch}, nil
}

// Publish sends the event to the fanout exchange.
func (b *RabbitBroadcaster) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	err = b.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// Listen binds an exclusive queue to the exchange and invokes fn for every
// received event until ctx is cancelled. It is the broker-backed counterpart
// of Hub.Subscribe for processes that only consume.
func (b *RabbitBroadcaster) Listen(ctx context.Context, fn Handler) error {
	q, err := b.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return errors.Wrap(err, "declare queue")
	}
	if err := b.ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		return errors.Wrap(err, "bind queue")
	}

	deliveries, err := b.ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var e Event
			if err := json.Unmarshal(d.Body, &e); err != nil {
				continue
			}
			fn(e)
		}
	}
}

// Close tears down the channel and connection.
func (b *RabbitBroadcaster) Close() error {
	if err := b.ch.Close(); err != nil {
		_ = b.conn.Close()
		return errors.Wrap(err, "close channel")
	}
	return errors.Wrap(b.conn.Close(), "close connection")
}
