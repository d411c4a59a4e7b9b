// Package scheduler собирает процесс, рассылающий напоминания об окончании подписки.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cloudslims/internal/cache"
	"github.com/magabrotheeeer/cloudslims/internal/config"
	"github.com/magabrotheeeer/cloudslims/internal/grpc/client"
	"github.com/magabrotheeeer/cloudslims/internal/grpc/server"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/metrics"
	"github.com/magabrotheeeer/cloudslims/internal/rabbitmq"
	schedulerservice "github.com/magabrotheeeer/cloudslims/internal/services/scheduler"
	"github.com/magabrotheeeer/cloudslims/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	cfg              *config.Config
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	cache            *cache.Cache
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

// waitForAPI ждёт, пока API применит миграции и начнёт отвечать SERVING.
func waitForAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	hc, err := client.NewHealthClient(cfg.GRPC.Target)
	if err != nil {
		return err
	}
	defer func() { _ = hc.Close() }()

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Worker.WaitAPI)
	defer cancel()
	return hc.WaitServing(waitCtx, logger, server.ServiceName, cfg.RabbitMQ.RetryDelay)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	if err := waitForAPI(ctx, cfg, logger); err != nil {
		return nil, fmt.Errorf("%s: api is not ready: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{cfg: cfg, db: db, logger: logger}
	if err = db.CheckDatabaseReady(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.cache, err = cache.InitServer(ctx, cfg.Redis); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}
	if a.conn, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues(), 0); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.schedulerService = schedulerservice.NewSchedulerService(
		db, rabbitmq.NewPublisher(a.ch), a.cache, metrics.New(prometheus.DefaultRegisterer), logger,
	)
	return a, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := metrics.Serve(ctx, a.cfg.Worker.MetricsAddress, a.logger); err != nil {
			a.logger.Error("metrics endpoint stopped", sl.Err(err))
		}
	}()

	a.schedulerService.Run(ctx, a.cfg.Scheduler.Interval)

	a.logger.Info("shutting down scheduler service")
	a.close()
	return nil
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
