package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bestcard/internal/domain"
	"bestcard/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCards = "../../../data/cards/sample_cards.json"

func TestLoadCards_Sample(t *testing.T) {
	cards, err := NewStore(sampleCards, nil).LoadCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 5)

	assert.Equal(t, "blue_cash_plus", cards[0].CardID)
	assert.Equal(t, "Blue Cash Plus", cards[0].CardName)
	assert.Equal(t, "0.027", cards[0].ForeignTxnFeeRate.String())
	require.Len(t, cards[0].RewardRules, 3)
	assert.Equal(t, "grocery", cards[0].RewardRules[0].Category)
	require.NotNil(t, cards[0].RewardRules[0].CapAmount)
	assert.Equal(t, "6000", cards[0].RewardRules[0].CapAmount.String())
	assert.Equal(t, "year", *cards[0].RewardRules[0].CapPeriod)
	require.NotNil(t, cards[0].Notes)

	assert.Nil(t, cards[1].Notes)
	assert.Empty(t, cards[4].RewardRules)
}

func TestLoadCards_NotFound(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing.json"), nil).LoadCards(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoadCards_Duplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"card_id": "a", "card_name": "A", "base_cashback_rate": 0.01, "reward_rules": []},
		{"card_id": "a", "card_name": "A again", "base_cashback_rate": 0.02, "reward_rules": []}
	]`), 0o644))

	_, err := NewStore(path, nil).LoadCards(context.Background())
	assert.ErrorIs(t, err, storage.ErrDuplicateCard)
}

func TestLoadCards_RejectsPercentRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"card_id": "a", "card_name": "A", "base_cashback_rate": 0.01,
		 "reward_rules": [{"category": "dining", "cashback_rate": 9}]}
	]`), 0o644))

	_, err := NewStore(path, nil).LoadCards(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestLoadCards_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- card_id: dining_max
  card_name: Dining Max
  annual_fee: 49
  foreign_txn_fee_rate: 0
  base_cashback_rate: 0.01
  reward_rules:
    - category: dining
      cashback_rate: 0.09
  notes: Strong restaurant card.
`), 0o644))

	cards, err := NewStore(path, nil).LoadCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "0.09", cards[0].RewardRules[0].CashbackRate.String())
	assert.Equal(t, "49", cards[0].AnnualFee.String())
}

func TestUpsertCard(t *testing.T) {
	for _, name := range []string{"cards.json", "cards.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			store := NewStore(path, nil)
			ctx := context.Background()

			card := domain.CardPolicy{
				CardID:           "titan",
				CardName:         "Titan Dining Max",
				AnnualFee:        decimal.NewFromInt(49),
				BaseCashbackRate: decimal.RequireFromString("0.01"),
			}
			require.NoError(t, store.UpsertCard(ctx, card))

			other := card
			other.CardID = "other"
			require.NoError(t, store.UpsertCard(ctx, other))

			card.CardName = "Titan v2"
			card.RewardRules = []domain.RewardRule{{Category: "dining", CashbackRate: decimal.RequireFromString("0.09")}}
			require.NoError(t, store.UpsertCard(ctx, card))

			cards, err := store.LoadCards(ctx)
			require.NoError(t, err)
			require.Len(t, cards, 2)
			assert.Equal(t, "titan", cards[0].CardID)
			assert.Equal(t, "Titan v2", cards[0].CardName)
			assert.Equal(t, "0.09", cards[0].RewardRules[0].CashbackRate.String())
			assert.Equal(t, "other", cards[1].CardID)
		})
	}
}

func TestUpsertCard_Invalid(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cards.json"), nil)
	err := store.UpsertCard(context.Background(), domain.CardPolicy{CardID: "x", CardName: "X", BaseCashbackRate: decimal.NewFromInt(5)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BaseCashbackRate")
}
