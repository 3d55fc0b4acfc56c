package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aurelius/mintbid/internal/domain/notifications"
	"github.com/aurelius/mintbid/pkg/events"
)

const notificationsQueue = "marketplace_notifications"

// NotificationConsumer consumes marketplace events and fans them into
// per-user notifications.
type NotificationConsumer struct {
	conn     *amqp.Connection
	service  *notifications.Service
	exchange string
	logger   *slog.Logger
}

// NewNotificationConsumer creates a new notification consumer
func NewNotificationConsumer(conn *amqp.Connection, service *notifications.Service, exchange string, logger *slog.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		conn:     conn,
		service:  service,
		exchange: exchange,
		logger:   logger,
	}
}

// Run starts the consumer loop
func (c *NotificationConsumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if setupErr := c.setupTopology(ch); setupErr != nil {
		return fmt.Errorf("failed to setup rabbitmq: %w", setupErr)
	}

	msgs, err := ch.Consume(
		notificationsQueue, // queue
		"",                 // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Waiting for marketplace events...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *NotificationConsumer) handle(ctx context.Context, d amqp.Delivery) {
	c.logger.Info("Received message", "routing_key", d.RoutingKey)

	err := c.dispatch(ctx, d.RoutingKey, d.Body)
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("Failed to Ack message", "error", ackErr)
		}
	case isDecodeError(err):
		// A message we cannot parse today we cannot parse tomorrow either.
		c.logger.Error("Failed to decode event", "routing_key", d.RoutingKey, "error", err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("Failed to Nack message", "error", nackErr)
		}
	default:
		c.logger.Error("Failed to process event", "routing_key", d.RoutingKey, "error", err)
		// Requeue and retry
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.Error("Failed to Nack message (requeue)", "error", nackErr)
		}
	}
}

type decodeError struct{ err error }

func (e decodeError) Error() string { return e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	_, ok := err.(decodeError)
	return ok
}

func (c *NotificationConsumer) dispatch(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case events.TypeBidPlaced:
		var event events.BidPlacedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return decodeError{err}
		}
		return c.service.ProcessBidPlaced(ctx, event)
	case events.TypeAuctionClosed:
		var event events.AuctionClosedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return decodeError{err}
		}
		return c.service.ProcessAuctionClosed(ctx, event)
	default:
		return decodeError{fmt.Errorf("unknown routing key %q", routingKey)}
	}
}

func (c *NotificationConsumer) setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		c.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		notificationsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return err
	}

	for _, key := range []string{events.TypeBidPlaced, events.TypeAuctionClosed} {
		if err := ch.QueueBind(q.Name, key, c.exchange, false, nil); err != nil {
			return err
		}
	}
	return nil
}
