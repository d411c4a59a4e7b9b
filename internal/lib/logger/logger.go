// Package logger создает slog-логгер в зависимости от окружения.
package logger

import (
	"log/slog"
	"os"
)

const envLocal = "local"

// New возвращает текстовый логгер уровня Debug для local и JSON уровня Info для остальных окружений.
func New(env string) *slog.Logger {
	if env == envLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
