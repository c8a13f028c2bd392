package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bestcard/internal/auth"
	"bestcard/internal/config"
	"bestcard/internal/handler"
	"bestcard/internal/telegram"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the HTTP engine and, when a bot token and public URL are
// configured, registers the Telegram webhook at /telegram.
func NewRouter(cfg config.Config, deps *Deps, logger *slog.Logger) (*gin.Engine, error) {
	if err := cfg.CheckAuth(); err != nil {
		return nil, err
	}
	router := handler.NewRouter(handler.RouterOptions{
		Service:     deps.Service,
		Tokens:      auth.NewTokenService(cfg),
		Clients:     auth.Clients(cfg.APIClients),
		RequireAuth: cfg.RequireAuth,
		Logger:      logger,
	})

	if !cfg.WebhookEnabled() {
		return router, nil
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	url, err := telegram.SetWebhook(api, cfg.WebhookBaseURL)
	if err != nil {
		return nil, err
	}
	router.POST("/telegram", telegram.NewBot(api, deps.Service, logger).WebhookHandler())
	logger.Info("Telegram webhook установлен", "url", url)
	return router, nil
}

// RunAPI serves HTTP until ctx is cancelled, then shuts down gracefully.
func RunAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	deps, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(cfg, deps, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Сервер запущен", "addr", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Останавливаем сервер")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// RunBot long-polls Telegram until ctx is cancelled.
func RunBot(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	deps, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}
	// polling и webhook взаимоисключающие
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn("Не удалось снять webhook", "error", err)
	}

	telegram.NewBot(api, deps.Service, logger).Poll(ctx, api)
	return nil
}
