// notify-consumer drains the task notification queue and logs each
// event. It stands in for downstream consumers (mailers, webhooks)
// during development.
package main

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/infrastructure/rabbit"
	"github.com/taskflow/backend/internal/notify"
	"github.com/taskflow/backend/internal/services/lifecycle"
	"github.com/taskflow/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("consumer exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	conn, err := rabbit.NewConnection(cfg.Rabbit)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	// Same declaration as the publisher so either side can start first.
	queue, err := ch.QueueDeclare(cfg.Rabbit.Queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	log.Info("consuming task notifications", zap.String("queue", queue.Name))

	manager := lifecycle.NewManager(log)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		manager.Listen(ctx)
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			var event notify.Event
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Warn("malformed notification dropped", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			assignee := ""
			if event.AssigneeID != nil {
				assignee = *event.AssigneeID
			}
			log.Info("task notification",
				zap.String("task_id", event.TaskID),
				zap.String("title", event.Title),
				zap.String("assignee_id", assignee),
				zap.String("action", event.Action),
			)
			_ = d.Ack(false)
		}
	}
}
