package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// OrderColumn must exist on tarot_cards and follow the embedded catalog order.
const OrderColumn = "position"

// CardRepository serves the catalog from tarot_cards.
type CardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

func (r *CardRepository) Name() string { return "postgres" }

func (r *CardRepository) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, arcana, COALESCE(suit, ''),
		       meaning_upright, meaning_reversed, COALESCE(keywords, '{}'),
		       COALESCE(element, ''), COALESCE(zodiac_sign, ''),
		       COALESCE(extended_meaning, '')
		FROM tarot_cards
		ORDER BY `+OrderColumn)
	if err != nil {
		return nil, fmt.Errorf("query tarot_cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tarot_cards: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		c      domain.Card
		arcana string
		suit   string
	)
	err := row.Scan(&c.ID, &c.Name, &arcana, &suit,
		&c.MeaningUpright, &c.MeaningReversed, &c.Keywords,
		&c.Element, &c.ZodiacSign, &c.ExtendedMeaning)
	if err != nil {
		return domain.Card{}, err
	}
	c.Arcana = domain.Arcana(arcana)
	c.Suit = domain.Suit(suit)
	return c, nil
}

var _ ports.CatalogSource = (*CardRepository)(nil)
