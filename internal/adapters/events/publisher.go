// Package events publishes reservation lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/domain"
)

// Publisher sends events to a durable topic exchange. The routing key is the
// event type, e.g. BookingCreated.
type Publisher struct {
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	return &Publisher{exchange: exchange, conn: conn, ch: ch}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev domain.ReservationEvent) (err error) {
	start := time.Now()
	defer func() { observability.ObserveExternal("rabbitmq", "publish", err, time.Since(start)) }()

	msg, err := message(ev)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, string(ev.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		log.Warn().Err(err).Msg("rabbitmq channel close failed")
	}
	return p.conn.Close()
}

func message(ev domain.ReservationEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.BookingID + ":" + string(ev.Type) + ":" + ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt.UTC(),
		Body:         body,
	}, nil
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, domain.ReservationEvent) error { return nil }
