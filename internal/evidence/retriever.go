// Package evidence builds short justification lines from a card's own policy.
package evidence

import (
	"fmt"
	"strings"

	"bestcard/internal/domain"

	"github.com/shopspring/decimal"
)

// MaxSnippets caps the number of evidence lines returned.
const MaxSnippets = 3

var hundred = decimal.NewFromInt(100)

// Retrieve returns up to MaxSnippets lines: matching reward rules first,
// then the foreign transaction fee, then the card notes.
func Retrieve(card domain.CardPolicy, category string) []string {
	snippets := make([]string, 0, MaxSnippets)

	for _, rule := range card.RewardRules {
		if !strings.EqualFold(rule.Category, category) {
			continue
		}
		line := fmt.Sprintf("%s: %s cashback %s%%", card.CardName, rule.Category, rule.CashbackRate.Mul(hundred).StringFixed(0))
		if rule.HasCap() {
			line += fmt.Sprintf(" (cap %s/%s)", rule.CapAmount.StringFixed(0), *rule.CapPeriod)
		}
		snippets = append(snippets, line)
	}

	if card.ForeignTxnFeeRate.IsPositive() {
		snippets = append(snippets, fmt.Sprintf("%s: foreign transaction fee %s%%", card.CardName, card.ForeignTxnFeeRate.Mul(hundred).StringFixed(1)))
	}

	if card.Notes != nil && *card.Notes != "" {
		snippets = append(snippets, "Policy note: "+*card.Notes)
	}

	if len(snippets) > MaxSnippets {
		snippets = snippets[:MaxSnippets]
	}
	return snippets
}
