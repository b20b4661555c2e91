package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobportal/internal/lib/logger/sl"
	"jobportal/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrConsumerClosed = errors.New("delivery channel closed")

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func New(urlForConn string, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

// SendMessage publishes a persistent mail job. A nil error means the
// broker accepted the message, not that it was delivered.
func (r *RabbitMQClient) SendMessage(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.SendMessage"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		"",
		r.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Handler processes one mail job.
type Handler func(ctx context.Context, msg models.Message) error

// StartReading consumes the queue until ctx is cancelled. Every delivery is
// acked on success; a failed one is requeued once and dropped after that.
func (r *RabbitMQClient) StartReading(ctx context.Context, log *slog.Logger, handler Handler) error {
	const op = "rabbitmq.StartReading"

	if err := r.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	deliveries, err := r.channel.ConsumeWithContext(
		ctx, r.queue.Name, "", false, false, false, false, nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", op, ErrConsumerClosed)
			}

			process(ctx, log, d, handler)
		}
	}
}

func process(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler Handler) {
	var msg models.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Error("failed to unmarshal message", sl.Err(err))
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		log.Error("failed to handle message",
			slog.String("purpose", msg.Purpose),
			slog.Bool("redelivered", d.Redelivered),
			sl.Err(err),
		)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}
