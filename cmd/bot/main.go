// cmd/bot/main.go
package main

import (
	"bestcard/internal/app"
	"bestcard/internal/config"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.MustLoad()
	logger := app.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunBot(ctx, cfg, logger); err != nil {
		slog.Error("Бот завершил работу с ошибкой", "error", err)
		stop()
		os.Exit(1)
	}
}
