package cloudslims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cloudslims/internal/cache"
	"github.com/magabrotheeeer/cloudslims/internal/config"
	"github.com/magabrotheeeer/cloudslims/internal/grpc/server"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/health"
	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/lib/jwt"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/librarian"
	"github.com/magabrotheeeer/cloudslims/internal/metrics"
	"github.com/magabrotheeeer/cloudslims/internal/migrations"
	"github.com/magabrotheeeer/cloudslims/internal/rabbitmq"
	accountservice "github.com/magabrotheeeer/cloudslims/internal/services/account"
	subservice "github.com/magabrotheeeer/cloudslims/internal/services/subscription"
	"github.com/magabrotheeeer/cloudslims/internal/storage/objectstore"
	"github.com/magabrotheeeer/cloudslims/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	probeInterval   = 15 * time.Second
)

// App — HTTP API и gRPC health-сервер CloudSLiMS.
type App struct {
	server *http.Server
	health *server.HealthServer
	grpc   string
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New поднимает зависимости: миграции, Redis, RabbitMQ, S3, модель библиотекаря.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.cloudslims.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{logger: logger, db: db, grpc: cfg.GRPC.Address}

	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	promoted, err := db.PromoteAdmins(ctx, cfg.AdminEmails)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if promoted > 0 {
		logger.Info("admin role granted", slog.Int("profiles", promoted))
	}

	if a.cache, err = cache.InitServer(ctx, cfg.Redis); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.conn, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues(), 0); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	proofs, err := objectstore.New(ctx, logger, cfg.S3)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lib, err := newLibrarian(ctx, cfg.Gemini, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := jwt.NewJWTMaker(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.TokenTTL)
	ident := identity.NewLocal(logger, db, a.cache, tokens)
	accounts := accountservice.NewAccountService(db, ident, logger)
	subscriptions := subservice.NewSubscriptionService(
		db, a.cache, proofs, rabbitmq.NewPublisher(a.ch), m, cfg.Billing, logger,
	)

	checks := map[string]health.Check{
		"postgres": db.CheckDatabaseReady,
		"redis":    a.cache.Ping,
	}
	grpcChecks := make(map[string]server.Check, len(checks))
	for name, c := range checks {
		grpcChecks[name] = server.Check(c)
	}
	a.health = server.NewHealthServer(logger, grpcChecks, probeInterval)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Identity:       ident,
		Profiles:       db,
		Accounts:       accounts,
		Subscriptions:  subscriptions,
		Librarian:      lib,
		Metrics:        m,
		Checks:         checks,
		ProofMaxSize:   cfg.S3.MaxSize,
		LibrarianRPS:   cfg.HTTPServer.LibrarianRPS,
		LibrarianBurst: cfg.HTTPServer.LibrarianBurst,
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return a, nil
}

// newLibrarian подключает Gemini, если задан ключ, иначе возвращает офлайн-библиотекаря.
func newLibrarian(ctx context.Context, cfg config.Gemini, logger *slog.Logger) (*librarian.Librarian, error) {
	if cfg.APIKey == "" {
		logger.Warn("gemini api key is not set, librarian works offline")
		return librarian.New(logger, nil, cfg.Timeout), nil
	}
	gen, err := librarian.NewGemini(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}
	return librarian.New(logger, gen, cfg.Timeout), nil
}

// Run обслуживает HTTP и gRPC до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	grpcCtx, stopGRPC := context.WithCancel(ctx)
	defer stopGRPC()
	go func() {
		errCh <- a.health.ListenAndServe(grpcCtx, a.grpc)
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			a.logger.Error("server stopped unexpectedly", sl.Err(runErr))
		}
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	stopGRPC()
	a.close()
	return runErr
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
