// Package engine scores card policies against a spend scenario.
package engine

import (
	"fmt"
	"strings"

	"bestcard/internal/domain"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// categoryRate returns the rate of the first rule matching category,
// falling back to the card's base rate.
func categoryRate(card domain.CardPolicy, category string) (decimal.Decimal, string) {
	for _, rule := range card.RewardRules {
		if strings.EqualFold(rule.Category, category) {
			return rule.CashbackRate, fmt.Sprintf("matched category '%s'", rule.Category)
		}
	}
	return card.BaseCashbackRate, "fallback to base cashback"
}

// Evaluate computes cashback, fee and net reward of one card for one scenario.
// Rates are taken as fractions as stored; no normalization happens here.
func Evaluate(card domain.CardPolicy, s domain.SpendScenario) domain.CardEvaluation {
	rate, basis := categoryRate(card, s.Category)
	cashback := s.Amount.Mul(rate)

	fee := decimal.Zero
	if s.IsForeign {
		fee = fee.Add(s.Amount.Mul(card.ForeignTxnFeeRate))
	}
	// оценка месячных трат только включает пропорцию, в расчёте не участвует
	if s.ProrationApplies() {
		fee = fee.Add(card.AnnualFee.Div(monthsInYear))
	}

	// округляем один раз, net считаем из уже округлённых значений
	cashback = cashback.Round(moneyPlaces)
	fee = fee.Round(moneyPlaces)
	net := cashback.Sub(fee)

	return domain.CardEvaluation{
		CardID:    card.CardID,
		CardName:  card.CardName,
		Cashback:  cashback,
		Fee:       fee,
		NetReward: net,
		Reasoning: fmt.Sprintf("rate=%s%% (%s), cashback=%s, fee=%s, net=%s",
			rate.Mul(hundred).StringFixed(2), basis,
			cashback.StringFixed(moneyPlaces), fee.StringFixed(moneyPlaces), net.StringFixed(moneyPlaces)),
	}
}
