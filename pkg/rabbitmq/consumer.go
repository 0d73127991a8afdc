package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// AllProductEvents binds every product.* routing key.
const AllProductEvents = "product.#"

// Watch binds a private, auto-deleted queue to the exchange and hands every
// decoded product event to handle until ctx is cancelled or the broker closes
// the delivery stream.
func Watch(ctx context.Context, cfg Config, bindingKey string, handle func(models.ProductEvent) error, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(queue.Name, bindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			settle(msg, msg.Body, handle, logger)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// settle decodes body, runs handle and acknowledges. Undecodable messages are
// dropped and handler failures are requeued.
func settle(ack acknowledger, body []byte, handle func(models.ProductEvent) error, logger *zap.Logger) {
	var event models.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warn("dropping undecodable product event", zap.Error(err))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("nack failed", zap.Error(err))
		}
		return
	}

	if err := handle(event); err != nil {
		logger.Error("product event handler failed", zap.String("event_id", event.ID), zap.Error(err))
		if err := ack.Nack(false, true); err != nil {
			logger.Error("nack failed", zap.Error(err))
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		logger.Error("ack failed", zap.Error(err))
	}
}
