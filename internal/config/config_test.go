package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "POLICY_SOURCE", "CARD_POLICY_FILE", "DATABASE_URL",
	"PARSER_STRATEGY", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "OPENAI_TIMEOUT",
	"TELEGRAM_BOT_TOKEN", "WEBHOOK_BASE_URL", "JWT_SECRET", "JWT_EXPIRES_IN", "REQUIRE_AUTH",
	"API_CLIENTS", "RAG_RAW_DIR", "RAG_CHUNK_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestMustLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := MustLoad()

	assert.Equal(t, ":8080", cfg.ServerPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, PolicySourceFile, cfg.PolicySource)
	assert.Equal(t, "data/cards/sample_cards.json", cfg.CardPolicyFile)
	assert.Equal(t, ParserKeyword, cfg.ParserStrategy)
	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Empty(t, cfg.APIClients)
	assert.False(t, cfg.WebhookEnabled())
	assert.Equal(t, "data/rag/raw", cfg.RAGRawDir)
	assert.Equal(t, "data/rag/chunks", cfg.RAGChunkDir)
}

func TestMustLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POLICY_SOURCE", "Postgres")
	t.Setenv("PARSER_STRATEGY", "llm")
	t.Setenv("OPENAI_TIMEOUT", "5s")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("WEBHOOK_BASE_URL", "https://bot.example.com/")

	cfg := MustLoad()
	assert.Equal(t, ":9090", cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, PolicySourcePostgres, cfg.PolicySource)
	assert.Equal(t, ParserLLM, cfg.ParserStrategy)
	assert.Equal(t, 5*time.Second, cfg.OpenAITimeout)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookBaseURL)
	assert.True(t, cfg.WebhookEnabled())
}

func TestMustLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLICY_SOURCE", "s3")
	t.Setenv("PARSER_STRATEGY", "magic")
	t.Setenv("JWT_EXPIRES_IN", "forever")
	t.Setenv("REQUIRE_AUTH", "sometimes")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := MustLoad()
	assert.Equal(t, PolicySourceFile, cfg.PolicySource)
	assert.Equal(t, ParserKeyword, cfg.ParserStrategy)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestMustLoad_APIClients(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_CLIENTS", " partner-app:s3cret , broken, :nope,mobile:m0b:ile,")

	cfg := MustLoad()
	assert.Equal(t, map[string]string{"partner-app": "s3cret", "mobile": "m0b:ile"}, cfg.APIClients)
}

func TestCheckAuth(t *testing.T) {
	clients := map[string]string{"partner-app": "s3cret"}
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"auth off", Config{JWTSecret: DefaultJWTSecret}, ""},
		{"ok", Config{RequireAuth: true, JWTSecret: "prod-secret", APIClients: clients}, ""},
		{"default secret", Config{RequireAuth: true, JWTSecret: DefaultJWTSecret, APIClients: clients}, "JWT_SECRET"},
		{"empty secret", Config{RequireAuth: true, APIClients: clients}, "JWT_SECRET"},
		{"no clients", Config{RequireAuth: true, JWTSecret: "prod-secret"}, "API_CLIENTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.CheckAuth()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
