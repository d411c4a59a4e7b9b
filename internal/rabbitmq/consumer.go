package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
)

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает потребителя очереди queueName.
// Одновременно обрабатывается не больше workers сообщений.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, workers int, handler Handler) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go Dispatch(ctx, log.With(slog.String("queue", queueName)), delivery, workers, handler)
	return nil
}

// Dispatch читает deliveries до закрытия канала или отмены ctx.
func Dispatch(ctx context.Context, log *slog.Logger, deliveries <-chan amqp.Delivery, workers int, handler Handler) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	for {
		select {
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				process(ctx, log, d.Body, d.Acknowledger, d.DeliveryTag, handler)
			}(d)
		case <-ctx.Done():
			return
		}
	}
}

func process(ctx context.Context, log *slog.Logger, body []byte, ack amqp.Acknowledger, tag uint64, handler Handler) {
	if ack == nil {
		log.Error("delivery without acknowledger")
		return
	}
	if err := handler(ctx, body); err != nil {
		log.Error("handler failed, requeue", sl.Err(err))
		if nackErr := ack.Nack(tag, false, true); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(tag, false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
