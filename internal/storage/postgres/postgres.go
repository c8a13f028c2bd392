// internal/storage/postgres/postgres.go
package postgres

import (
	"bestcard/internal/domain"
	"bestcard/internal/storage"
	"bestcard/internal/validator"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

const undefinedTable = "42P01"

type Storage struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewStorage(db *pgxpool.Pool, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{db: db, logger: logger}
}

// Connect opens a pool and pings it with exponential backoff (5 retries).
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("БД недоступна, повтор", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// sanitizeString очищает строку от невидимых и проблемных символов
func sanitizeString(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		// NO-BREAK SPACE, табы и переводы строк превращаем в обычный пробел
		if unicode.IsSpace(r) {
			result = append(result, ' ')
		} else if unicode.IsPrint(r) {
			result = append(result, r)
		}
	}
	return strings.Join(strings.Fields(string(result)), " ")
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTable
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

// LoadCards returns all cards in insertion order with their rules in
// position order. A missing schema is reported as storage.ErrNotFound.
func (s *Storage) LoadCards(ctx context.Context) ([]domain.CardPolicy, error) {
	rows, err := s.db.Query(ctx, `
		SELECT
			c.card_id, c.card_name,
			c.annual_fee::text, c.foreign_txn_fee_rate::text, c.base_cashback_rate::text,
			c.notes,
			r.category, r.cashback_rate::text, r.cap_amount::text, r.cap_period
		FROM cards c
		LEFT JOIN reward_rules r ON r.card_pk = c.id
		ORDER BY c.id, r.position
	`)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: cards table", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.CardPolicy, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			cardID, cardName          string
			annualFee, foreignFee     string
			baseRate                  string
			notes                     *string
			category, rate, capAmount *string
			capPeriod                 *string
		)
		if err := rows.Scan(&cardID, &cardName, &annualFee, &foreignFee, &baseRate, &notes,
			&category, &rate, &capAmount, &capPeriod); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}

		i, seen := index[cardID]
		if !seen {
			card := domain.CardPolicy{CardID: cardID, CardName: cardName, Notes: notes, RewardRules: []domain.RewardRule{}}
			if card.AnnualFee, err = parseDecimal("annual_fee", annualFee); err != nil {
				return nil, err
			}
			if card.ForeignTxnFeeRate, err = parseDecimal("foreign_txn_fee_rate", foreignFee); err != nil {
				return nil, err
			}
			if card.BaseCashbackRate, err = parseDecimal("base_cashback_rate", baseRate); err != nil {
				return nil, err
			}
			cards = append(cards, card)
			i = len(cards) - 1
			index[cardID] = i
		}

		// LEFT JOIN: у карты без правил все поля правила NULL
		if category == nil {
			continue
		}
		rule := domain.RewardRule{Category: *category, CapPeriod: capPeriod}
		if rule.CashbackRate, err = parseDecimal("cashback_rate", *rate); err != nil {
			return nil, err
		}
		if capAmount != nil {
			d, err := parseDecimal("cap_amount", *capAmount)
			if err != nil {
				return nil, err
			}
			rule.CapAmount = &d
		}
		cards[i].RewardRules = append(cards[i].RewardRules, rule)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: cards table", storage.ErrNotFound)
		}
		return nil, fmt.Errorf("rows error: %w", err)
	}

	s.logger.Debug("LoadCards completed", "cards", len(cards))
	return cards, nil
}

// UpsertCard inserts the card or replaces it by card_id, rewriting its rules
// in one transaction.
func (s *Storage) UpsertCard(ctx context.Context, card domain.CardPolicy) error {
	card.CardName = sanitizeString(card.CardName)
	if card.Notes != nil {
		n := sanitizeString(*card.Notes)
		card.Notes = &n
	}
	if err := validator.Struct(card); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var cardPK int64
	err = tx.QueryRow(ctx, `
		INSERT INTO cards (card_id, card_name, annual_fee, foreign_txn_fee_rate, base_cashback_rate, notes)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric, $5::text::numeric, $6)
		ON CONFLICT (card_id) DO UPDATE SET
			card_name = EXCLUDED.card_name,
			annual_fee = EXCLUDED.annual_fee,
			foreign_txn_fee_rate = EXCLUDED.foreign_txn_fee_rate,
			base_cashback_rate = EXCLUDED.base_cashback_rate,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING id
	`, card.CardID, card.CardName, card.AnnualFee.String(), card.ForeignTxnFeeRate.String(),
		card.BaseCashbackRate.String(), card.Notes).Scan(&cardPK)
	if err != nil {
		return fmt.Errorf("upsert card %q: %w", card.CardID, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM reward_rules WHERE card_pk = $1", cardPK); err != nil {
		return fmt.Errorf("clear old rules: %w", err)
	}

	for pos, rule := range card.RewardRules {
		var capAmount *string
		if rule.CapAmount != nil {
			v := rule.CapAmount.String()
			capAmount = &v
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO reward_rules (card_pk, position, category, cashback_rate, cap_amount, cap_period)
			VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6)
		`, cardPK, pos, rule.Category, rule.CashbackRate.String(), capAmount, rule.CapPeriod)
		if err != nil {
			return fmt.Errorf("insert rule %q: %w", rule.Category, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.logger.Info("card saved", "card_id", card.CardID, "rules", len(card.RewardRules))
	return nil
}

var _ storage.PolicyStorage = (*Storage)(nil)
