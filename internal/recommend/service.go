// Package recommend wires parsing, evaluation, ranking and evidence into one
// request/response call.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bestcard/internal/domain"
	"bestcard/internal/engine"
	"bestcard/internal/evidence"
	"bestcard/internal/parser"
	"bestcard/internal/storage"
)

var (
	ErrMissingFields = errors.New("either message or (amount + category) is required")
	ErrNoCards       = errors.New("no cards available")

	// ErrInconsistentRanking means the top evaluation has no policy in the
	// snapshot it was ranked from.
	ErrInconsistentRanking = errors.New("top ranked card missing from policy snapshot")
)

// ValidationError is a user-correctable request problem.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error { return &ValidationError{Err: err} }

type Service struct {
	parser *parser.Parser
	store  storage.PolicyStore
	logger *slog.Logger
}

func NewService(p *parser.Parser, store storage.PolicyStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{parser: p, store: store, logger: logger}
}

// Recommend returns the full response or an error, never a partial result.
func (s *Service) Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.RecommendResponse, error) {
	scenario, err := s.scenario(ctx, req)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.LoadCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}

	ranked := engine.Rank(cards, scenario)
	if len(ranked) == 0 {
		return nil, invalid(ErrNoCards)
	}

	best := ranked[0]
	policy, err := policyFor(cards, best.CardID)
	if err != nil {
		s.logger.Error("recommend.inconsistent_ranking", "card_id", best.CardID, "cards", len(cards))
		return nil, err
	}

	s.logger.Info("recommend.done",
		"best_card", best.CardID,
		"net", best.NetReward.String(),
		"category", scenario.Category,
		"is_foreign", scenario.IsForeign,
		"cards", len(ranked),
	)

	return &domain.RecommendResponse{
		BestCard:       best,
		RankedCards:    ranked,
		ParsedScenario: scenario,
		PolicyEvidence: evidence.Retrieve(*policy, scenario.Category),
	}, nil
}

// policyFor returns the snapshot card the ranking picked.
func policyFor(cards []domain.CardPolicy, cardID string) (*domain.CardPolicy, error) {
	for i := range cards {
		if cards[i].CardID == cardID {
			return &cards[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInconsistentRanking, cardID)
}

func (s *Service) scenario(ctx context.Context, req domain.RecommendRequest) (domain.SpendScenario, error) {
	if req.HasMessage() {
		return s.parser.Parse(ctx, *req.Message, parser.Overrides{
			Amount:                    req.Amount,
			Category:                  req.Category,
			IsForeign:                 req.IsForeign,
			Currency:                  req.Currency,
			IncludeAnnualFeeProration: req.IncludeAnnualFeeProration,
			MonthlySpendEstimate:      req.MonthlySpendEstimate,
		})
	}

	if req.Amount == nil || req.Category == nil {
		return domain.SpendScenario{}, invalid(ErrMissingFields)
	}

	isForeign := false
	if req.IsForeign != nil {
		isForeign = *req.IsForeign
	}
	scenario, err := domain.NewSpendScenario(*req.Amount, *req.Category, isForeign, req.Currency,
		req.IncludeAnnualFeeProration, req.MonthlySpendEstimate)
	if err != nil {
		return domain.SpendScenario{}, invalid(err)
	}
	return scenario, nil
}
