package decks

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

//go:embed data/cards.json data/decks.yaml
var dataFS embed.FS

const (
	cardsFile = "data/cards.json"
	decksFile = "data/decks.yaml"
)

// EmbeddedStore serves the bundled static catalog and the deck registry.
// The catalog order is canonical: remote catalogs must use the same order
// for the daily card to agree across sources.
type EmbeddedStore struct {
	deckFile string

	once  sync.Once
	cards []domain.Card
	decks []domain.DeckConfig
	err   error
}

func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

// NewEmbeddedStoreWithDecks reads the deck registry from a YAML file on disk
// instead of the bundled one. The card catalog is still the bundled one.
func NewEmbeddedStoreWithDecks(path string) *EmbeddedStore {
	return &EmbeddedStore{deckFile: path}
}

func (s *EmbeddedStore) init() {
	raw, err := dataFS.ReadFile(cardsFile)
	if err != nil {
		s.err = fmt.Errorf("read embedded catalog: %w", err)
		return
	}
	var cards []domain.Card
	if err := json.Unmarshal(raw, &cards); err != nil {
		s.err = fmt.Errorf("parse embedded catalog: %w", err)
		return
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			s.err = fmt.Errorf("embedded catalog: %w", err)
			return
		}
	}
	s.cards = cards

	var deckRaw []byte
	if s.deckFile != "" {
		deckRaw, err = os.ReadFile(s.deckFile)
	} else {
		deckRaw, err = dataFS.ReadFile(decksFile)
	}
	if err != nil {
		s.err = fmt.Errorf("read deck registry: %w", err)
		return
	}
	decks, err := ParseDecks(deckRaw)
	if err != nil {
		s.err = err
		return
	}
	s.decks = decks
}

// ParseDecks decodes and validates a YAML deck registry.
func ParseDecks(raw []byte) ([]domain.DeckConfig, error) {
	var decks []domain.DeckConfig
	if err := yaml.Unmarshal(raw, &decks); err != nil {
		return nil, fmt.Errorf("parse deck registry: %w", err)
	}
	if len(decks) == 0 {
		return nil, fmt.Errorf("deck registry is empty")
	}
	seen := make(map[string]bool, len(decks))
	for _, d := range decks {
		if d.ID == "" {
			return nil, fmt.Errorf("deck registry: deck without id")
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("deck registry: duplicate deck %q", d.ID)
		}
		seen[d.ID] = true
		switch d.ImageFormat {
		case "png", "jpg", "webp":
		default:
			return nil, fmt.Errorf("deck %s: unsupported image format %q", d.ID, d.ImageFormat)
		}
	}
	return decks, nil
}

func (s *EmbeddedStore) Name() string { return "embedded" }

func (s *EmbeddedStore) ListCards(_ context.Context) ([]domain.Card, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.cards), nil
}

func (s *EmbeddedStore) GetDeck(_ context.Context, deckID string) (domain.DeckConfig, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.DeckConfig{}, s.err
	}
	for _, d := range s.decks {
		if d.ID == deckID {
			return d, nil
		}
	}
	return domain.DeckConfig{}, domain.ErrDeckNotFound
}

func (s *EmbeddedStore) ListDecks(_ context.Context) ([]domain.DeckConfig, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.decks), nil
}
