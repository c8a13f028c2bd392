// Package cardimport turns a natural-language card description into a stored
// card policy with the help of the completion model.
package cardimport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bestcard/internal/domain"
	"bestcard/internal/llm"
	"bestcard/internal/schema"
	"bestcard/internal/storage"
	"bestcard/internal/validator"

	"github.com/shopspring/decimal"
)

var ErrEmptyDescription = errors.New("card description must not be empty")

var (
	one        = decimal.NewFromInt(1)
	hundred    = decimal.NewFromInt(100)
	nonSlug    = regexp.MustCompile(`[^a-z0-9]+`)
	numberJunk = strings.NewReplacer("%", "", "$", "", ",", "", " ", "")
)

func systemPrompt() string {
	return "Extract a credit card policy from the user's description. " +
		"Return JSON only with keys: card_id, card_name, annual_fee, foreign_txn_fee_rate, " +
		"base_cashback_rate, reward_rules, notes. " +
		"card_id is a short snake_case identifier. " +
		"Rates are fractions (0.05 means 5%). " +
		"reward_rules is a list of {category, cashback_rate, cap_amount, cap_period}; " +
		"category must be one of: " + strings.Join(domain.AllowedCategories, ", ") + ". " +
		"cap_amount and cap_period are null when there is no cap. " +
		"notes is a one-sentence summary or null."
}

type draftRule struct {
	Category  string           `json:"category"`
	RawRate   any              `json:"cashback_rate"`
	CapAmount *decimal.Decimal `json:"cap_amount"`
	CapPeriod *string          `json:"cap_period"`
}

type draftCard struct {
	CardID            string      `json:"card_id"`
	CardName          string      `json:"card_name"`
	AnnualFee         any         `json:"annual_fee"`
	ForeignTxnFeeRate any         `json:"foreign_txn_fee_rate"`
	BaseCashbackRate  any         `json:"base_cashback_rate"`
	RewardRules       []draftRule `json:"reward_rules"`
	Notes             *string     `json:"notes"`
}

type Importer struct {
	completer llm.Completer
	store     storage.PolicyWriter
	rawDir    string
	logger    *slog.Logger
}

// NewImporter: при пустом rawDir исходный текст не сохраняется.
func NewImporter(completer llm.Completer, store storage.PolicyWriter, rawDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{completer: completer, store: store, rawDir: rawDir, logger: logger}
}

type Result struct {
	Card    domain.CardPolicy
	RawPath string
}

// Import asks the model for a draft, normalizes and validates it, upserts it
// and, when a raw dir is configured, saves the description as <card_id>.txt.
func (i *Importer) Import(ctx context.Context, description string) (*Result, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	content, err := i.completer.CompleteJSON(ctx, systemPrompt(), description)
	if err != nil {
		return nil, fmt.Errorf("draft card: %w", err)
	}

	card, err := Draft(llm.ExtractJSON(content))
	if err != nil {
		i.logger.Warn("cardimport.invalid_draft", "error", err, "content", content)
		return nil, err
	}

	if err := i.store.UpsertCard(ctx, card); err != nil {
		return nil, fmt.Errorf("save card: %w", err)
	}

	res := &Result{Card: card}
	if i.rawDir != "" {
		path, err := saveRaw(i.rawDir, card.CardID, description)
		if err != nil {
			return nil, err
		}
		res.RawPath = path
	}

	i.logger.Info("cardimport.done", "card_id", card.CardID, "rules", len(card.RewardRules), "raw", res.RawPath)
	return res, nil
}

// Draft converts a model reply into a validated card policy. Rates above 1
// or written with a percent sign are read as percentages (9 → 0.09).
func Draft(raw []byte) (domain.CardPolicy, error) {
	if err := schema.CardDraft.Validate(raw); err != nil {
		return domain.CardPolicy{}, fmt.Errorf("draft card: %w", err)
	}

	var d draftCard
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return domain.CardPolicy{}, fmt.Errorf("decode draft: %w", err)
	}

	card := domain.CardPolicy{
		CardID:      Slug(d.CardID),
		CardName:    strings.TrimSpace(d.CardName),
		Notes:       d.Notes,
		RewardRules: make([]domain.RewardRule, 0, len(d.RewardRules)),
	}
	if card.CardID == "" {
		card.CardID = Slug(d.CardName)
	}

	var err error
	if card.AnnualFee, err = number("annual_fee", d.AnnualFee); err != nil {
		return domain.CardPolicy{}, err
	}
	if card.ForeignTxnFeeRate, err = rate("foreign_txn_fee_rate", d.ForeignTxnFeeRate); err != nil {
		return domain.CardPolicy{}, err
	}
	if card.BaseCashbackRate, err = rate("base_cashback_rate", d.BaseCashbackRate); err != nil {
		return domain.CardPolicy{}, err
	}
	for _, r := range d.RewardRules {
		cr, err := rate("cashback_rate", r.RawRate)
		if err != nil {
			return domain.CardPolicy{}, err
		}
		rule := domain.RewardRule{Category: r.Category, CashbackRate: cr, CapAmount: r.CapAmount, CapPeriod: r.CapPeriod}
		// неполный лимит не храним
		if !rule.HasCap() {
			rule.CapAmount, rule.CapPeriod = nil, nil
		}
		card.RewardRules = append(card.RewardRules, rule)
	}

	if err := validator.Struct(card); err != nil {
		return domain.CardPolicy{}, err
	}
	return card, nil
}

// Slug lowercases s and collapses everything but [a-z0-9] into underscores.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
}

// number accepts a JSON number or a string like "$95" or "1,500".
func number(field string, v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := numberJunk.Replace(strings.TrimSpace(x))
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: %q is not a number", field, x)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%s: unexpected type %T", field, v)
	}
}

func rate(field string, v any) (decimal.Decimal, error) {
	d, err := number(field, v)
	if err != nil {
		return decimal.Zero, err
	}
	// "1%" явный процент, иначе всё больше 1 считаем процентом
	if str, ok := v.(string); ok && strings.Contains(str, "%") || d.GreaterThan(one) {
		d = d.Div(hundred)
	}
	return d, nil
}

func saveRaw(dir, cardID, description string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create raw dir: %w", err)
	}
	path := filepath.Join(dir, cardID+".txt")
	if err := os.WriteFile(path, []byte(description+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("save raw description: %w", err)
	}
	return path, nil
}
