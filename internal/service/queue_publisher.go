// Package service provides the RabbitMQ publisher for marketplace
// domain events. Publishing is best-effort: errors are logged and
// returned so callers can ignore failures without interrupting the
// main request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/ticket-marketplace/internal/queue"
)

// Publisher publishes domain events to durable queues on the default
// exchange. A Publisher with an empty URL is valid and drops every
// event, which keeps the purchase path independent of broker health.
type Publisher struct {
	url string
	log *logrus.Logger
}

func NewPublisher(url string, log *logrus.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// TicketSold publishes a TicketSoldEvent to the ticket.sold queue.
func (p *Publisher) TicketSold(ctx context.Context, ev queue.TicketSoldEvent) error {
	return p.publish(ctx, queue.TicketSoldQueue, ev)
}

// ListingMatched publishes a ListingMatchedEvent to the
// listing.matched queue.
func (p *Publisher) ListingMatched(ctx context.Context, ev queue.ListingMatchedEvent) error {
	return p.publish(ctx, queue.ListingMatchedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
	if p == nil || p.url == "" {
		return nil // events disabled
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts; declare is idempotent.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.WithError(err).WithField("queue", queueName).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
