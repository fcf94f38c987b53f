package app

import (
	"context"
	"fmt"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// DeckResolver picks the deck a request renders with. There is no global
// active deck: each request names one or gets the configured default.
type DeckResolver struct {
	store       ports.DeckStore
	defaultDeck string
}

func NewDeckResolver(store ports.DeckStore, defaultDeck string) *DeckResolver {
	return &DeckResolver{store: store, defaultDeck: defaultDeck}
}

func (r *DeckResolver) Resolve(ctx context.Context, deckID string) (domain.DeckConfig, error) {
	if deckID == "" {
		deckID = r.defaultDeck
	}
	deck, err := r.store.GetDeck(ctx, deckID)
	if err != nil {
		return domain.DeckConfig{}, fmt.Errorf("get deck %q: %w", deckID, err)
	}
	return deck, nil
}

func (r *DeckResolver) List(ctx context.Context) ([]domain.DeckConfig, error) {
	return r.store.ListDecks(ctx)
}

func (r *DeckResolver) Default() string {
	return r.defaultDeck
}
