package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

var errUnreachable = errors.New("dial tcp: connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockCatalog struct {
	name  string
	cards []domain.Card
	// errs is consumed one per call; once exhausted calls succeed.
	errs  []error
	calls int
}

func (m *mockCatalog) Name() string { return m.name }

func (m *mockCatalog) ListCards(_ context.Context) ([]domain.Card, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.cards, nil
}

type mockDeckStore struct {
	decks []domain.DeckConfig
}

func (m *mockDeckStore) GetDeck(_ context.Context, id string) (domain.DeckConfig, error) {
	for _, d := range m.decks {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.DeckConfig{}, domain.ErrDeckNotFound
}

func (m *mockDeckStore) ListDecks(_ context.Context) ([]domain.DeckConfig, error) {
	return m.decks, nil
}

type mockReadings struct {
	mu    sync.Mutex
	saved []ports.Reading
	err   error
}

func (m *mockReadings) SaveReading(_ context.Context, r ports.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, r)
	return nil
}

func (m *mockReadings) ListReadings(_ context.Context, userID string, limit int) ([]ports.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.Reading
	for _, r := range m.saved {
		if r.UserID == userID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, m.err
}

type mockSubs struct {
	premium bool
	err     error
}

func (m mockSubs) IsPremium(_ context.Context, _ string) (bool, error) {
	return m.premium, m.err
}

type mockInterpreter struct {
	out   ports.InterpretOutput
	err   error
	input ports.InterpretInput
}

func (m *mockInterpreter) Interpret(_ context.Context, in ports.InterpretInput) (ports.InterpretOutput, error) {
	m.input = in
	return m.out, m.err
}

type mockCache struct {
	entries map[string]ports.CachedDaily
	ttls    map[string]time.Duration
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]ports.CachedDaily{}, ttls: map[string]time.Duration{}}
}

func (m *mockCache) Get(_ context.Context, key string) (ports.CachedDaily, bool, error) {
	if m.getErr != nil {
		return ports.CachedDaily{}, false, m.getErr
	}
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, e ports.CachedDaily, ttl time.Duration) error {
	m.entries[key] = e
	m.ttls[key] = ttl
	return nil
}

type fixedRNG struct{ val int }

func (r fixedRNG) Intn(n int) int { return r.val % n }

func testCards() []domain.Card {
	return []domain.Card{
		{ID: "fool", Name: "The Fool", Arcana: domain.Major, MeaningUpright: "New beginnings", MeaningReversed: "Recklessness", Keywords: []string{"innocence"}},
		{ID: "magician", Name: "The Magician", Arcana: domain.Major, MeaningUpright: "Manifestation", MeaningReversed: "Manipulation", Keywords: []string{"willpower"}},
		{ID: "high-priestess", Name: "High Priestess", Arcana: domain.Major, MeaningUpright: "Intuition", MeaningReversed: "Secrets"},
		{ID: "ace-of-cups", Name: "Ace of Cups", Arcana: domain.Minor, Suit: domain.Cups, MeaningUpright: "New feelings", MeaningReversed: "Emotional loss"},
		{ID: "ace-of-wands", Name: "Ace of Wands", Arcana: domain.Minor, Suit: domain.Wands, MeaningUpright: "Creation", MeaningReversed: "Lack of energy"},
		{ID: "ace-of-swords", Name: "Ace of Swords", Arcana: domain.Minor, Suit: domain.Swords, MeaningUpright: "Breakthrough", MeaningReversed: "Confusion"},
		{ID: "ace-of-pentacles", Name: "Ace of Pentacles", Arcana: domain.Minor, Suit: domain.Pentacles, MeaningUpright: "Opportunity", MeaningReversed: "Missed opportunity"},
	}
}

func testDecks() *mockDeckStore {
	return &mockDeckStore{decks: []domain.DeckConfig{
		{
			ID:                  "rider-waite",
			Name:                "Rider-Waite-Smith",
			ImageFormat:         "png",
			MajorArcanaPath:     "/images/tarot/decks/rider-waite/major",
			MinorArcanaPath:     "/images/tarot/decks/rider-waite/minor",
			EnabledReadingTypes: []domain.ReadingType{domain.ReadingDaily, domain.ReadingThreeCard},
		},
		{
			ID:                  "spreads-only",
			ImageFormat:         "webp",
			MajorArcanaPath:     "/images/tarot/decks/spreads-only/major",
			MinorArcanaPath:     "/images/tarot/decks/spreads-only/minor",
			EnabledReadingTypes: []domain.ReadingType{domain.ReadingLove},
		},
	}}
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
