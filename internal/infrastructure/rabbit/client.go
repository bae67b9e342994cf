package rabbit

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taskflow/backend/internal/config"
)

// NewConnection dials RabbitMQ. Callers treat a nil connection as "publisher
// disabled"; the broker is an optional collaborator.
func NewConnection(cfg config.RabbitConfig) (*amqp.Connection, error) {
	url := cfg.URL
	if url == "" {
		url = "amqp://localhost"
	}
	return amqp.Dial(url)
}
