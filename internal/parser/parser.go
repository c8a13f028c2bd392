package parser

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bestcard/internal/domain"

	"github.com/shopspring/decimal"
)

// Overrides are explicitly supplied fields. They always win over whatever
// the extractor found in the text.
type Overrides struct {
	Amount                    *decimal.Decimal
	Category                  *string
	IsForeign                 *bool
	Currency                  string
	IncludeAnnualFeeProration bool
	MonthlySpendEstimate      *decimal.Decimal
}

type Parser struct {
	extractor Extractor
	logger    *slog.Logger
}

func New(extractor Extractor, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{extractor: extractor, logger: logger}
}

// Parse resolves a scenario from message and overrides. The extractor only
// fills the gaps the overrides leave.
func (p *Parser) Parse(ctx context.Context, message string, o Overrides) (domain.SpendScenario, error) {
	fallbackCurrency := strings.ToUpper(strings.TrimSpace(o.Currency))
	if fallbackCurrency == "" {
		fallbackCurrency = domain.DefaultCurrency
	}

	extracted, err := p.extractor.Extract(ctx, message, fallbackCurrency)
	if err != nil {
		var pe *ScenarioParseError
		if errors.As(err, &pe) {
			return domain.SpendScenario{}, err
		}
		return domain.SpendScenario{}, &ScenarioParseError{Reason: "could not extract scenario", Err: err}
	}

	amount := extracted.Amount
	if o.Amount != nil {
		amount = o.Amount
	}
	if amount == nil || !amount.IsPositive() {
		p.logger.Debug("parser.no_positive_amount", "message", message)
		return domain.SpendScenario{}, &ScenarioParseError{Reason: "could not parse a positive amount from message"}
	}

	category := extracted.Category
	if o.Category != nil && strings.TrimSpace(*o.Category) != "" {
		category = *o.Category
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if !domain.IsAllowedCategory(category) {
		category = domain.CategoryOther
	}

	isForeign := false
	switch {
	case o.IsForeign != nil:
		isForeign = *o.IsForeign
	case extracted.IsForeign != nil:
		isForeign = *extracted.IsForeign
	}

	currency := strings.ToUpper(strings.TrimSpace(o.Currency))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(extracted.Currency))
	}

	proration := o.IncludeAnnualFeeProration || extracted.IncludeAnnualFeeProration

	monthly := extracted.MonthlySpendEstimate
	if o.MonthlySpendEstimate != nil {
		monthly = o.MonthlySpendEstimate
	}

	s, err := domain.NewSpendScenario(*amount, category, isForeign, currency, proration, monthly)
	if err != nil {
		return domain.SpendScenario{}, &ScenarioParseError{Reason: "invalid scenario", Err: err}
	}

	p.logger.Debug("parser.scenario", "amount", s.Amount.String(), "category", s.Category,
		"is_foreign", s.IsForeign, "currency", s.Currency)
	return s, nil
}
