package domain

import "github.com/shopspring/decimal"

// RecommendRequest carries either free text or explicit fields.
type RecommendRequest struct {
	Message                   *string          `json:"message,omitempty"`
	Amount                    *decimal.Decimal `json:"amount,omitempty"`
	Category                  *string          `json:"category,omitempty" validate:"omitempty,notblank"`
	IsForeign                 *bool            `json:"is_foreign,omitempty"`
	Currency                  string           `json:"currency" validate:"omitempty,currency"`
	IncludeAnnualFeeProration bool             `json:"include_annual_fee_proration"`
	MonthlySpendEstimate      *decimal.Decimal `json:"monthly_spend_estimate,omitempty"`
}

// HasMessage reports whether the request carries non-blank free text.
func (r RecommendRequest) HasMessage() bool {
	return r.Message != nil && *r.Message != ""
}

type RecommendResponse struct {
	BestCard       CardEvaluation   `json:"best_card"`
	RankedCards    []CardEvaluation `json:"ranked_cards"`
	ParsedScenario SpendScenario    `json:"parsed_scenario"`
	PolicyEvidence []string         `json:"policy_evidence"`
}
