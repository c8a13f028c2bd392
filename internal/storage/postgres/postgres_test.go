package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"bestcard/internal/domain"
	"bestcard/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dining Max", "Dining Max"},
		{"  Blue\tCash \n Plus ", "Blue Cash Plus"},
		{"Titan\u200b Card", "Titan Card"},
		{"Карта Тинькофф", "Карта Тинькофф"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeString(tt.in))
	}
}

// Интеграционный тест: нужен TEST_DATABASE_URL на пустую БД.
func TestStorage_UpsertAndLoad(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrations.Up(ctx, db))

	pool, err := Connect(ctx, dsn, nil)
	require.NoError(t, err)
	defer pool.Close()
	_, err = pool.Exec(ctx, "TRUNCATE cards CASCADE")
	require.NoError(t, err)

	s := NewStorage(pool, nil)
	cards, err := s.LoadCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)

	capAmount := decimal.NewFromInt(1500)
	period := "quarter"
	grocer := domain.CardPolicy{
		CardID:           "grocer_plus",
		CardName:         "Grocer Plus",
		AnnualFee:        decimal.NewFromInt(95),
		BaseCashbackRate: decimal.RequireFromString("0.01"),
		RewardRules: []domain.RewardRule{
			{Category: "grocery", CashbackRate: decimal.RequireFromString("0.05"), CapAmount: &capAmount, CapPeriod: &period},
			{Category: "dining", CashbackRate: decimal.RequireFromString("0.02")},
		},
	}
	flat := domain.CardPolicy{
		CardID:            "flat_two",
		CardName:          "Flat Two",
		ForeignTxnFeeRate: decimal.RequireFromString("0.03"),
		BaseCashbackRate:  decimal.RequireFromString("0.02"),
	}
	require.NoError(t, s.UpsertCard(ctx, grocer))
	require.NoError(t, s.UpsertCard(ctx, flat))

	grocer.CardName = "Grocer Plus II"
	grocer.RewardRules = grocer.RewardRules[:1]
	require.NoError(t, s.UpsertCard(ctx, grocer))

	cards, err = s.LoadCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, "grocer_plus", cards[0].CardID)
	assert.Equal(t, "Grocer Plus II", cards[0].CardName)
	assert.True(t, cards[0].AnnualFee.Equal(decimal.NewFromInt(95)))
	require.Len(t, cards[0].RewardRules, 1)
	assert.True(t, cards[0].RewardRules[0].CashbackRate.Equal(decimal.RequireFromString("0.05")))
	require.NotNil(t, cards[0].RewardRules[0].CapAmount)
	assert.Equal(t, "quarter", *cards[0].RewardRules[0].CapPeriod)

	assert.Equal(t, "flat_two", cards[1].CardID)
	assert.Empty(t, cards[1].RewardRules)
	assert.Nil(t, cards[1].Notes)
}
