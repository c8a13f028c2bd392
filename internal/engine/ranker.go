package engine

import (
	"sort"

	"bestcard/internal/domain"
)

// Rank evaluates every card and orders the results by net reward, then
// cashback, both descending. Equal pairs keep the input order.
func Rank(cards []domain.CardPolicy, s domain.SpendScenario) []domain.CardEvaluation {
	evaluations := make([]domain.CardEvaluation, 0, len(cards))
	for _, card := range cards {
		evaluations = append(evaluations, Evaluate(card, s))
	}

	sort.SliceStable(evaluations, func(i, j int) bool {
		a, b := evaluations[i], evaluations[j]
		if c := a.NetReward.Cmp(b.NetReward); c != 0 {
			return c > 0
		}
		return a.Cashback.GreaterThan(b.Cashback)
	})
	return evaluations
}
