// Package client опрашивает health-сервер CloudSLiMS по gRPC.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient — клиент протокола grpc.health.v1.
type HealthClient struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewHealthClient создает клиента. Соединение устанавливается лениво.
func NewHealthClient(target string, opts ...grpc.DialOption) (*HealthClient, error) {
	const op = "grpc.client.NewHealthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &HealthClient{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Close закрывает соединение.
func (c *HealthClient) Close() error {
	return c.conn.Close()
}

// Serving сообщает, обслуживает ли сервер service.
func (c *HealthClient) Serving(ctx context.Context, service string) (bool, error) {
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// WaitServing опрашивает сервер каждые delay, пока он не станет SERVING или не отменится ctx.
// Воркеры ждут API: он применяет миграции при старте.
func (c *HealthClient) WaitServing(ctx context.Context, log *slog.Logger, service string, delay time.Duration) error {
	const op = "grpc.client.WaitServing"
	for {
		ok, err := c.Serving(ctx, service)
		if ok {
			return nil
		}
		log.Info("waiting for api to become healthy", slog.String("op", op), slog.Any("last_error", err))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
}
