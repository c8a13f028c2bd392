// Package file is the policy store backed by a JSON (or YAML) array on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bestcard/internal/domain"
	"bestcard/internal/schema"
	"bestcard/internal/storage"
	"bestcard/internal/validator"

	"gopkg.in/yaml.v3"
)

type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex // сериализует UpsertCard
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string { return s.path }

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadCards re-reads the file on every call, so each request gets its own
// snapshot.
func (s *Store) LoadCards(_ context.Context) ([]domain.CardPolicy, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: policy file %s", storage.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	if isYAML(s.path) {
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("parse policy yaml %s: %w", s.path, err)
		}
	}

	if err := schema.CardFile.Validate(data); err != nil {
		return nil, fmt.Errorf("policy file %s: %w", s.path, err)
	}

	var cards []domain.CardPolicy
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("decode policy file %s: %w", s.path, err)
	}
	for i, card := range cards {
		if err := validator.Struct(card); err != nil {
			return nil, fmt.Errorf("card #%d (%s): %w", i, card.CardID, err)
		}
	}
	if err := storage.CheckUnique(cards); err != nil {
		return nil, fmt.Errorf("policy file %s: %w", s.path, err)
	}

	s.logger.Debug("policy file loaded", "path", s.path, "cards", len(cards))
	return cards, nil
}

// UpsertCard replaces the card with the same id or appends it, then
// rewrites the file through a temp file + rename.
func (s *Store) UpsertCard(ctx context.Context, card domain.CardPolicy) error {
	if err := validator.Struct(card); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.LoadCards(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	replaced := false
	for i := range cards {
		if cards[i].CardID == card.CardID {
			cards[i] = card
			replaced = true
			break
		}
	}
	if !replaced {
		cards = append(cards, card)
	}

	data, err := s.encode(cards)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return err
	}

	s.logger.Info("card saved", "path", s.path, "card_id", card.CardID, "replaced", replaced)
	return nil
}

func (s *Store) encode(cards []domain.CardPolicy) ([]byte, error) {
	for i := range cards {
		if cards[i].RewardRules == nil {
			cards[i].RewardRules = []domain.RewardRule{}
		}
	}
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode cards: %w", err)
	}
	if !isYAML(s.path) {
		return append(data, '\n'), nil
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("encode cards: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("encode cards yaml: %w", err)
	}
	return out, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create policy dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cards_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp policy file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp policy file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp policy file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace policy file: %w", err)
	}
	return nil
}

var _ storage.PolicyStorage = (*Store)(nil)
