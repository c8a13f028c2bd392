// internal/storage/storage.go
package storage

import (
	"bestcard/internal/domain"
	"context"
	"errors"
	"fmt"
)

// ErrNotFound: источник политик отсутствует (нет файла или таблицы).
var ErrNotFound = errors.New("policy source not found")

// ErrDuplicateCard is returned when a snapshot holds two cards with one id.
var ErrDuplicateCard = errors.New("duplicate card_id")

// PolicyStore returns the complete card snapshot for one request.
type PolicyStore interface {
	LoadCards(ctx context.Context) ([]domain.CardPolicy, error)
}

// PolicyWriter adds or replaces a card by card_id.
type PolicyWriter interface {
	UpsertCard(ctx context.Context, card domain.CardPolicy) error
}

type PolicyStorage interface {
	PolicyStore
	PolicyWriter
}

// CheckUnique fails on the first repeated card_id. Duplicates are an error,
// never merged.
func CheckUnique(cards []domain.CardPolicy) error {
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, ok := seen[c.CardID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateCard, c.CardID)
		}
		seen[c.CardID] = struct{}{}
	}
	return nil
}
