// Package main CloudSLiMS API
//
// @title           CloudSLiMS API
// @version         1.0
// @description     Подписки на облачный SLiMS: регистрация, проверка оплаты, активация и счета

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/cloudslims/internal/app/cloudslims"
	"github.com/magabrotheeeer/cloudslims/internal/config"
	"github.com/magabrotheeeer/cloudslims/internal/lib/logger"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting cloudslims", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cloudslims.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("cloudslims stopped gracefully")
}
