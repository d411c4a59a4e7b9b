// Package server — gRPC-сервер со стандартным протоколом grpc.health.v1.
//
// Состояние сервиса обновляется по результатам периодических проверок
// зависимостей (Postgres, Redis). Пока хотя бы одна проверка не проходит,
// сервис отвечает NOT_SERVING.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
)

// ServiceName — имя сервиса в протоколе health.
const ServiceName = "cloudslims"

// Check проверяет одну зависимость.
type Check func(ctx context.Context) error

// HealthServer публикует состояние сервиса по gRPC.
type HealthServer struct {
	log      *slog.Logger
	health   *health.Server
	grpc     *grpc.Server
	checks   map[string]Check
	interval time.Duration
}

// NewHealthServer создает сервер. До первой проверки сервис считается NOT_SERVING.
func NewHealthServer(log *slog.Logger, checks map[string]Check, interval time.Duration) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &HealthServer{
		log:      log,
		health:   hs,
		grpc:     srv,
		checks:   checks,
		interval: interval,
	}
}

// Probe выполняет все проверки и обновляет статус. Возвращает true, если всё доступно.
func (s *HealthServer) Probe(ctx context.Context) bool {
	const op = "grpc.server.Probe"
	serving := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.log.Warn("dependency check failed", sl.Op(op), slog.String("dependency", name), sl.Err(err))
			serving = false
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !serving {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return serving
}

// Serve слушает lis до отмены ctx.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	const op = "grpc.server.Serve"

	go s.watch(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	}
}

// ListenAndServe открывает TCP-порт addr и обслуживает его до отмены ctx.
func (s *HealthServer) ListenAndServe(ctx context.Context, addr string) error {
	const op = "grpc.server.ListenAndServe"
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.Serve(ctx, lis)
}

func (s *HealthServer) watch(ctx context.Context) {
	s.Probe(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}
