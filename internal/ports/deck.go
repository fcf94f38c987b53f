package ports

import (
	"context"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

// DeckStore provides access to deck image configurations.
type DeckStore interface {
	GetDeck(ctx context.Context, deckID string) (domain.DeckConfig, error)
	ListDecks(ctx context.Context) ([]domain.DeckConfig, error)
}

// CatalogSource provides the ordered card catalog.
type CatalogSource interface {
	// Name identifies the source in logs and responses.
	Name() string
	ListCards(ctx context.Context) ([]domain.Card, error)
}
