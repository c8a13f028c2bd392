package parser

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"bestcard/internal/domain"
	"bestcard/internal/llm"
	"bestcard/internal/schema"

	"github.com/shopspring/decimal"
)

func scenarioSystemPrompt() string {
	return "Extract a spending scenario from user message. " +
		"Return JSON only with keys: amount, category, is_foreign, currency, " +
		"include_annual_fee_proration, monthly_spend_estimate. " +
		"amount must be positive number. " +
		"category must be one of: " + strings.Join(domain.AllowedCategories, ", ") + ". " +
		"If unknown, set category='other'. " +
		"is_foreign must be boolean. " +
		"currency must be a short code like USD/CNY/EUR. " +
		"include_annual_fee_proration default false unless user explicitly asks annual fee sharing. " +
		"monthly_spend_estimate should be null if absent."
}

type modelScenario struct {
	Amount                    *decimal.Decimal `json:"amount"`
	Category                  *string          `json:"category"`
	IsForeign                 *bool            `json:"is_foreign"`
	Currency                  *string          `json:"currency"`
	IncludeAnnualFeeProration *bool            `json:"include_annual_fee_proration"`
	MonthlySpendEstimate      *decimal.Decimal `json:"monthly_spend_estimate"`
}

// ModelExtractor delegates extraction to a language model.
type ModelExtractor struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewModelExtractor(completer llm.Completer, logger *slog.Logger) *ModelExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelExtractor{completer: completer, logger: logger}
}

func (m *ModelExtractor) Extract(ctx context.Context, message, fallbackCurrency string) (Fields, error) {
	content, err := m.completer.CompleteJSON(ctx, scenarioSystemPrompt(), message)
	if err != nil {
		return Fields{}, &ScenarioParseError{Reason: "model extraction failed", Err: err}
	}

	raw := llm.ExtractJSON(content)
	if err := schema.ScenarioReply.Validate(raw); err != nil {
		m.logger.Warn("parser.model.invalid_reply", "error", err, "content", content)
		return Fields{}, &ScenarioParseError{Reason: "model returned unparseable content", Err: err}
	}

	var out modelScenario
	if err := json.Unmarshal(raw, &out); err != nil {
		return Fields{}, &ScenarioParseError{Reason: "model returned unparseable content", Err: err}
	}

	f := Fields{
		Amount:               out.Amount,
		IsForeign:            out.IsForeign,
		MonthlySpendEstimate: out.MonthlySpendEstimate,
		Currency:             fallbackCurrency,
	}
	if out.Category != nil {
		f.Category = *out.Category
	}
	if out.Currency != nil && strings.TrimSpace(*out.Currency) != "" {
		f.Currency = strings.ToUpper(strings.TrimSpace(*out.Currency))
	}
	if out.IncludeAnnualFeeProration != nil {
		f.IncludeAnnualFeeProration = *out.IncludeAnnualFeeProration
	}
	return f, nil
}

var _ Extractor = (*ModelExtractor)(nil)
var _ Extractor = (*KeywordExtractor)(nil)
