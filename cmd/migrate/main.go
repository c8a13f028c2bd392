// cmd/migrate/main.go
package main

import (
	"bestcard/internal/app"
	"bestcard/internal/config"
	"context"
	"log/slog"
	"os"
)

func main() {
	cfg := config.MustLoad()
	logger := app.SetupLogger(cfg.LogLevel)

	if err := app.Migrate(context.Background(), cfg, logger); err != nil {
		slog.Error("Миграции завершились с ошибкой", "error", err)
		os.Exit(1)
	}
}
