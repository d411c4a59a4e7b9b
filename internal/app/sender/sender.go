// Package sender собирает процесс, отправляющий письма по уведомлениям из RabbitMQ.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cloudslims/internal/config"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/lib/smtp"
	"github.com/magabrotheeeer/cloudslims/internal/metrics"
	"github.com/magabrotheeeer/cloudslims/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/cloudslims/internal/services/sender"
)

// App представляет приложение отправки писем.
type App struct {
	cfg           *config.Config
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New создает новый экземпляр приложения отправки писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues(), cfg.RabbitMQ.Workers)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(
		transport, cfg.Billing, metrics.New(prometheus.DefaultRegisterer), logger,
	)

	return &App{
		cfg:           cfg,
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run подписывается на все очереди уведомлений и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	const op = "app.sender.Run"
	defer a.close()

	for _, q := range rabbitmq.GetNotificationQueues() {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, q.QueueName, a.cfg.RabbitMQ.Workers, a.senderService.Handle); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		a.logger.Info("consuming queue", slog.String("queue", q.QueueName))
	}

	go func() {
		if err := metrics.Serve(ctx, a.cfg.Worker.MetricsAddress, a.logger); err != nil {
			a.logger.Error("metrics endpoint stopped", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutting down sender service")
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
