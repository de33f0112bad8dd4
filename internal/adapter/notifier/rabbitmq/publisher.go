// Package rabbitmq publishes seat-status-change events for downstream
// cache invalidation and analytics consumers.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"ticketcore/internal/core/domain"
	"ticketcore/internal/core/ports"
)

const queueName = "seat.status-changed"

// Publisher holds one connection and channel for the process lifetime and
// publishes persistent JSON messages to a durable queue. Callers treat
// publish failures as best-effort; messages are not part of any
// transactional boundary.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) PublishSeatChange(ctx context.Context, change domain.SeatChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal seat change: %w", err)
	}
	return p.ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

var _ ports.ChangeNotifier = (*Publisher)(nil)
