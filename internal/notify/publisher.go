package notify

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher emits best-effort lifecycle events. Implementations must never be
// required for the primary mutation to succeed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// AMQPPublisher publishes events to a durable RabbitMQ queue.
type AMQPPublisher struct {
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewAMQPPublisher opens a channel on the given connection and declares the
// queue.
func NewAMQPPublisher(conn *amqp.Connection, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queue == "" {
		queue = QueueName
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		channel.Close()
		return nil, err
	}

	return &AMQPPublisher{channel: channel, queue: queue, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close releases the channel.
func (p *AMQPPublisher) Close() error {
	if p == nil || p.channel == nil {
		return nil
	}
	return p.channel.Close()
}
