package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// DefaultQueue is the queue order events are published to.
const DefaultQueue = "order_queue"

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
	queue   string
	log     logrus.FieldLogger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares the durable
// order queue.
func NewClient(cfg Config, log logrus.FieldLogger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	client, err := newClient(ch, cfg.Queue, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	client.conn = conn
	return client, nil
}

func newClient(ch channel, queue string, log logrus.FieldLogger) (*Client, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if err := declare(ch, queue); err != nil {
		return nil, err
	}

	log.WithField("queue", queue).Info("rabbitmq client connected")
	return &Client{
		channel: ch,
		queue:   queue,
		log:     log,
	}, nil
}

func declare(ch channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishOrderPlaced publishes a persistent JSON order event to the queue.
func (c *Client) PublishOrderPlaced(ctx context.Context, order *models.OrderPlaced) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    order.OrderID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    order.PlacedAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	c.log.WithField("order_id", order.OrderID).Debug("order event published")
	return nil
}

// OrderHandler processes one decoded order event.
type OrderHandler func(order *models.OrderPlaced) error

// ConsumeOrderEvents starts a goroutine that feeds every event on the queue
// to handler. Handler failures are requeued; undecodable messages are
// dropped. The goroutine ends when the channel closes.
func (c *Client) ConsumeOrderEvents(handler OrderHandler) error {
	if err := declare(c.channel, c.queue); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.WithField("queue", c.queue).Info("waiting for order events")
	go func() {
		for msg := range msgs {
			c.deliver(msg, handler)
		}
	}()
	return nil
}

func (c *Client) deliver(msg amqp.Delivery, handler OrderHandler) {
	log := c.log.WithField("delivery_tag", msg.DeliveryTag)

	var order models.OrderPlaced
	if err := json.Unmarshal(msg.Body, &order); err != nil {
		log.WithError(err).Warn("dropping undecodable order event")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Error("failed to nack message")
		}
		return
	}

	if err := handler(&order); err != nil {
		log.WithError(err).Warn("order event handler failed, requeueing")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			log.WithError(nackErr).Error("failed to nack message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.WithError(ackErr).Error("failed to ack message")
	}
}

// LogOrderPlaced returns a handler that records each placed order.
func LogOrderPlaced(log logrus.FieldLogger) OrderHandler {
	return func(order *models.OrderPlaced) error {
		log.WithFields(logrus.Fields{
			"order_id":  order.OrderID,
			"user_id":   order.UserID,
			"lines":     len(order.Lines),
			"total":     order.Total,
			"placed_at": order.PlacedAt.Format(time.RFC3339),
		}).Info("order event received")
		return nil
	}
}
