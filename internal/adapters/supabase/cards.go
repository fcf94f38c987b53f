package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

const (
	tableCards = "tarot_cards"
	// OrderColumn must exist on tarot_cards and follow the embedded catalog order.
	OrderColumn = "position"
)

// cardRow mirrors a tarot_cards row.
type cardRow struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Arcana          string   `json:"arcana"`
	Suit            *string  `json:"suit"`
	MeaningUpright  string   `json:"meaning_upright"`
	MeaningReversed string   `json:"meaning_reversed"`
	Keywords        []string `json:"keywords"`
	Element         *string  `json:"element"`
	ZodiacSign      *string  `json:"zodiac_sign"`
	ExtendedMeaning *string  `json:"extended_meaning"`
}

func (r cardRow) toDomain() domain.Card {
	return domain.Card{
		ID:              r.ID,
		Name:            r.Name,
		Arcana:          domain.Arcana(r.Arcana),
		Suit:            domain.Suit(deref(r.Suit)),
		MeaningUpright:  r.MeaningUpright,
		MeaningReversed: r.MeaningReversed,
		Keywords:        r.Keywords,
		Element:         deref(r.Element),
		ZodiacSign:      deref(r.ZodiacSign),
		ExtendedMeaning: deref(r.ExtendedMeaning),
	}
}

// CardRepository reads the catalog from the tarot_cards table, ordered by
// OrderColumn so that it matches the bundled catalog's order.
type CardRepository struct {
	client *Client
}

func NewCardRepository(client *Client) *CardRepository {
	return &CardRepository{client: client}
}

func (r *CardRepository) Name() string { return "supabase" }

func (r *CardRepository) ListCards(ctx context.Context) ([]domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := r.client.rest().
		From(tableCards).
		Select("*", "", false).
		Order(OrderColumn, &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", tableCards, err)
	}

	var rows []cardRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tableCards, err)
	}
	cards := make([]domain.Card, len(rows))
	for i, row := range rows {
		cards[i] = row.toDomain()
	}
	return cards, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
