// Package app builds the shared object graph (config → store → parser →
// orchestrator) once per process and runs the API and bot modes.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"bestcard/internal/config"
	"bestcard/internal/llm"
	"bestcard/internal/parser"
	"bestcard/internal/recommend"
	"bestcard/internal/storage"
	"bestcard/internal/storage/file"
	"bestcard/internal/storage/postgres"
	"bestcard/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// SetupLogger installs a text slog handler on stdout as the default logger.
func SetupLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func LLMClient(cfg config.Config, logger *slog.Logger) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	}, logger)
}

// NewExtractor picks the parser strategy from config.
func NewExtractor(cfg config.Config, logger *slog.Logger) parser.Extractor {
	if cfg.ParserStrategy == config.ParserLLM {
		return parser.NewModelExtractor(LLMClient(cfg, logger), logger)
	}
	return parser.NewKeywordExtractor()
}

// NewStore opens the configured policy source. The returned close func is
// never nil.
func NewStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.PolicyStorage, func(), error) {
	if cfg.PolicySource != config.PolicySourcePostgres {
		logger.Info("Источник политик: файл", "path", cfg.CardPolicyFile)
		return file.NewStore(cfg.CardPolicyFile, logger), func() {}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.DBConn, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("✅ Подключились к PostgreSQL")
	return postgres.NewStorage(pool, logger), pool.Close, nil
}

// Deps is everything a transport needs.
type Deps struct {
	Store   storage.PolicyStorage
	Service *recommend.Service
	Close   func()
}

func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Deps, error) {
	store, closeStore, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	p := parser.New(NewExtractor(cfg, logger), logger)
	logger.Info("Парсер сценариев", "strategy", cfg.ParserStrategy)
	return &Deps{
		Store:   store,
		Service: recommend.NewService(p, store, logger),
		Close:   closeStore,
	}, nil
}

// Migrate applies the embedded goose migrations to cfg.DBConn.
func Migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := sql.Open("pgx", cfg.DBConn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	logger.Info("Применяем миграции")
	if err := migrations.Up(ctx, db); err != nil {
		return err
	}
	logger.Info("✅ Миграции применены")
	return nil
}
