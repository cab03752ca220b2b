// Package queue hands MercadoPago notifications to a background consumer over AMQP.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"baluarte/apperr"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler processes one notification
type Handler func(ctx context.Context, msg *PaymentNotificationMessage) error

// Client AMQP publisher and consumer for payment notifications
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       zerolog.Logger
}

// NewClient dials the broker and declares the exchange and queue
func NewClient(url, exchangeName, queueName string, logger zerolog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name
	err = c.channel.QueueBind(
		c.queueName,
		c.queueName,
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishPaymentNotification enqueues a notification for the consumer
func (c *Client) PublishPaymentNotification(ctx context.Context, msg *PaymentNotificationMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.Info().
		Str("payment_id", msg.PaymentID).
		Str("exchange", c.exchangeName).
		Str("queue", c.queueName).
		Msg("published payment notification")

	return nil
}

// ConsumePaymentNotifications processes messages until ctx is done
func (c *Client) ConsumePaymentNotifications(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.Info().Str("queue", c.queueName).Msg("consuming payment notifications")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Err(ctx.Err()).Msg("stopping message consumption")
			return nil
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			handleDelivery(ctx, delivery, handler, c.logger)
		}
	}
}

// handleDelivery acks processed messages, drops malformed or rejected ones and
// requeues transient failures once.
func handleDelivery(ctx context.Context, delivery amqp091.Delivery, handler Handler, logger zerolog.Logger) {
	msg, err := PaymentNotificationMessageFromJSON(delivery.Body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to unmarshal message")
		delivery.Nack(false, false)
		return
	}

	log := logger.With().Str("payment_id", msg.PaymentID).Str("request_id", msg.RequestID).Logger()

	if err := handler(ctx, msg); err != nil {
		requeue := retryable(err) && !delivery.Redelivered
		log.Error().Err(err).Bool("requeue", requeue).Msg("failed to handle payment notification")
		delivery.Nack(false, requeue)
		return
	}

	delivery.Ack(false)
	log.Info().Msg("processed payment notification")
}

// retryable reports whether a failure may succeed on another attempt
func retryable(err error) bool {
	e := apperr.As(err)
	return e.Kind == apperr.KindInternal || e.Kind == apperr.KindUpstream
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
