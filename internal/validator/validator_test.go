package validator

import (
	"testing"

	"bestcard/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() domain.CardPolicy {
	return domain.CardPolicy{
		CardID:            "blue",
		CardName:          "Blue",
		AnnualFee:         decimal.NewFromInt(95),
		ForeignTxnFeeRate: decimal.RequireFromString("0.027"),
		BaseCashbackRate:  decimal.RequireFromString("0.01"),
		RewardRules: []domain.RewardRule{
			{Category: "grocery", CashbackRate: decimal.RequireFromString("0.06")},
		},
	}
}

func TestStruct_ValidCard(t *testing.T) {
	require.NoError(t, Struct(validCard()))
}

func TestStruct_RateAboveOne(t *testing.T) {
	card := validCard()
	card.RewardRules[0].CashbackRate = decimal.NewFromInt(9)

	err := Struct(card)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CashbackRate must be <= 1")
}

func TestStruct_BlankID(t *testing.T) {
	card := validCard()
	card.CardID = "   "

	err := Struct(card)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CardID must not be blank")
}

func TestStruct_Currency(t *testing.T) {
	req := domain.RecommendRequest{Currency: "U1"}
	err := Struct(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency code")

	req.Currency = "CNY"
	assert.NoError(t, Struct(req))

	req.Currency = ""
	assert.NoError(t, Struct(req))
}

func TestCategoryTag(t *testing.T) {
	type probe struct {
		Category string `validate:"category"`
	}
	assert.NoError(t, Validate.Struct(probe{Category: "Dining"}))
	assert.Error(t, Validate.Struct(probe{Category: "casino"}))
}
