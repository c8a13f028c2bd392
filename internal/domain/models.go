// internal/domain/models.go
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Категории, к которым парсер приводит свободный текст.
const (
	CategoryGrocery        = "grocery"
	CategoryDining         = "dining"
	CategoryTravel         = "travel"
	CategoryGas            = "gas"
	CategoryOnlineShopping = "online_shopping"
	CategoryOther          = "other"
)

// AllowedCategories is the closed set the parser normalizes into.
var AllowedCategories = []string{
	CategoryGrocery,
	CategoryDining,
	CategoryTravel,
	CategoryGas,
	CategoryOnlineShopping,
	CategoryOther,
}

const DefaultCurrency = "USD"

func init() {
	// Деньги и ставки в JSON пишем числами, как в файлах политик
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than 0")
	ErrEmptyCategory     = errors.New("category must not be empty")
)

func IsAllowedCategory(c string) bool {
	for _, a := range AllowedCategories {
		if a == c {
			return true
		}
	}
	return false
}

// RewardRule: кэшбэк по одной категории. Лимит только описательный.
type RewardRule struct {
	Category     string           `json:"category" validate:"required,notblank"`
	CashbackRate decimal.Decimal  `json:"cashback_rate" validate:"gte=0,lte=1"`
	CapAmount    *decimal.Decimal `json:"cap_amount,omitempty"`
	CapPeriod    *string          `json:"cap_period,omitempty"`
}

// HasCap reports whether both cap fields are set.
func (r RewardRule) HasCap() bool {
	return r.CapAmount != nil && r.CapPeriod != nil && !r.CapAmount.IsZero() && *r.CapPeriod != ""
}

// CardPolicy is the static policy of one card.
type CardPolicy struct {
	CardID            string          `json:"card_id" validate:"required,notblank"`
	CardName          string          `json:"card_name" validate:"required,notblank"`
	AnnualFee         decimal.Decimal `json:"annual_fee" validate:"gte=0"`
	ForeignTxnFeeRate decimal.Decimal `json:"foreign_txn_fee_rate" validate:"gte=0,lte=1"`
	BaseCashbackRate  decimal.Decimal `json:"base_cashback_rate" validate:"gte=0,lte=1"`
	RewardRules       []RewardRule    `json:"reward_rules" validate:"dive"`
	Notes             *string         `json:"notes,omitempty"`
}

type SpendScenario struct {
	Amount                    decimal.Decimal  `json:"amount"`
	Category                  string           `json:"category"`
	IsForeign                 bool             `json:"is_foreign"`
	Currency                  string           `json:"currency"`
	IncludeAnnualFeeProration bool             `json:"include_annual_fee_proration"`
	MonthlySpendEstimate      *decimal.Decimal `json:"monthly_spend_estimate"`
}

// NewSpendScenario builds a scenario and checks its invariants.
func NewSpendScenario(amount decimal.Decimal, category string, isForeign bool, currency string, proration bool, monthly *decimal.Decimal) (SpendScenario, error) {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	s := SpendScenario{
		Amount:                    amount,
		Category:                  category,
		IsForeign:                 isForeign,
		Currency:                  currency,
		IncludeAnnualFeeProration: proration,
		MonthlySpendEstimate:      monthly,
	}
	if err := s.Validate(); err != nil {
		return SpendScenario{}, err
	}
	return s, nil
}

func (s SpendScenario) Validate() error {
	if !s.Amount.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrNonPositiveAmount, s.Amount.String())
	}
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// ProrationApplies: флаг И наличие оценки месячных трат.
func (s SpendScenario) ProrationApplies() bool {
	return s.IncludeAnnualFeeProration && s.MonthlySpendEstimate != nil
}

type CardEvaluation struct {
	CardID    string          `json:"card_id"`
	CardName  string          `json:"card_name"`
	Cashback  decimal.Decimal `json:"cashback"`
	Fee       decimal.Decimal `json:"fee"`
	NetReward decimal.Decimal `json:"net_reward"`
	Reasoning string          `json:"reasoning"`
}
