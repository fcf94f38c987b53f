package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// PremiumPlaceholder is shown to premium readers when no extended meaning exists yet.
const PremiumPlaceholder = "Additional insights will be available soon."

// DailyRequest is the application-level input (no HTTP types).
type DailyRequest struct {
	UserID string
	// Date defaults to today (UTC) when zero.
	Date   domain.Date
	DeckID string
}

// DailyReading is the application-level output.
type DailyReading struct {
	Card            domain.Card
	Reversed        bool
	Meaning         string
	ImagePath       string
	ExtendedMeaning string
	DeckID          string
	Date            domain.Date
	Source          string
	Cached          bool
	Timestamp       time.Time
}

// DailyService computes the daily card and its side effects.
type DailyService struct {
	catalog     *CatalogLoader
	decks       *DeckResolver
	cache       ports.DailyCache
	readings    ports.ReadingStore
	subs        ports.SubscriptionChecker
	interpreter ports.Interpreter
	now         func() time.Time
	logger      *slog.Logger
}

// DailyOption configures optional collaborators of the DailyService.
type DailyOption func(*DailyService)

func WithCache(c ports.DailyCache) DailyOption {
	return func(s *DailyService) { s.cache = c }
}

func WithReadingStore(r ports.ReadingStore) DailyOption {
	return func(s *DailyService) { s.readings = r }
}

func WithSubscriptions(c ports.SubscriptionChecker) DailyOption {
	return func(s *DailyService) { s.subs = c }
}

func WithInterpreter(i ports.Interpreter) DailyOption {
	return func(s *DailyService) { s.interpreter = i }
}

func WithClock(now func() time.Time) DailyOption {
	return func(s *DailyService) { s.now = now }
}

func NewDailyService(catalog *CatalogLoader, decks *DeckResolver, logger *slog.Logger, opts ...DailyOption) *DailyService {
	s := &DailyService{
		catalog: catalog,
		decks:   decks,
		now:     time.Now,
		logger:  logger.With("component", "app.daily"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DailyService) DailyCard(ctx context.Context, req DailyRequest) (DailyReading, error) {
	now := s.now()
	date := req.Date
	if date.IsZero() {
		date = domain.DateOf(now)
	}

	deck, err := s.decks.Resolve(ctx, req.DeckID)
	if err != nil {
		return DailyReading{}, err
	}
	if !deck.Enables(domain.ReadingDaily) {
		return DailyReading{}, fmt.Errorf("deck %s: %w", deck.ID, domain.ErrReadingTypeDisabled)
	}

	reading := DailyReading{DeckID: deck.ID, Date: date, Timestamp: now}

	key := dailyCacheKey(deck.ID, date, req.UserID)
	if entry, ok := s.cacheGet(ctx, key); ok {
		reading.Card = entry.Card
		reading.Reversed = entry.Reversed
		reading.ImagePath = entry.ImagePath
		reading.Source = entry.Source
		reading.Cached = true
	} else {
		catalog, err := s.catalog.Load(ctx)
		if err != nil {
			return DailyReading{}, fmt.Errorf("load catalog: %w", err)
		}
		picked, err := domain.SelectDailyCard(catalog.Cards, date, req.UserID)
		if err != nil {
			return DailyReading{}, fmt.Errorf("select daily card: %w", err)
		}
		reading.Card = picked.Card
		reading.Reversed = picked.Reversed
		reading.ImagePath = domain.ResolveImagePath(picked.Card, deck)
		reading.Source = catalog.Source

		s.cacheSet(ctx, key, ports.CachedDaily{
			Card:      reading.Card,
			Reversed:  reading.Reversed,
			ImagePath: reading.ImagePath,
			Source:    reading.Source,
		}, cacheTTL(date, now))
	}
	reading.Meaning = reading.Card.Meaning(reading.Reversed)

	if req.UserID != "" {
		s.recordReading(ctx, req.UserID, reading.Card.ID, domain.ReadingDaily, reading.Reversed, now)
		reading.ExtendedMeaning = s.extendedMeaning(ctx, req.UserID, reading)
	}

	return reading, nil
}

func (s *DailyService) cacheGet(ctx context.Context, key string) (ports.CachedDaily, bool) {
	if s.cache == nil {
		return ports.CachedDaily{}, false
	}
	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "daily cache read failed", "key", key, "error", err)
		return ports.CachedDaily{}, false
	}
	return entry, ok
}

func (s *DailyService) cacheSet(ctx context.Context, key string, entry ports.CachedDaily, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, entry, ttl); err != nil {
		s.logger.WarnContext(ctx, "daily cache write failed", "key", key, "error", err)
	}
}

func (s *DailyService) recordReading(ctx context.Context, userID, cardID string, rt domain.ReadingType, reversed bool, at time.Time) {
	if s.readings == nil {
		return
	}
	err := s.readings.SaveReading(ctx, ports.Reading{
		ID:          uuid.NewString(),
		UserID:      userID,
		CardID:      cardID,
		ReadingType: rt,
		IsReversed:  reversed,
		CreatedAt:   at.UTC(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "save reading history failed", "user_id", userID, "error", err)
	}
}

// extendedMeaning is best-effort: any failure degrades to the placeholder
// or to nothing, never to an error.
func (s *DailyService) extendedMeaning(ctx context.Context, userID string, r DailyReading) string {
	if s.subs == nil {
		return ""
	}
	premium, err := s.subs.IsPremium(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "premium check failed", "user_id", userID, "error", err)
		return ""
	}
	if !premium {
		return ""
	}
	if r.Card.ExtendedMeaning != "" {
		return r.Card.ExtendedMeaning
	}
	if s.interpreter == nil {
		return PremiumPlaceholder
	}

	out, err := s.interpreter.Interpret(ctx, ports.InterpretInput{
		CardName: r.Card.Name,
		Reversed: r.Reversed,
		Keywords: r.Card.Keywords,
		Meaning:  r.Meaning,
		Date:     r.Date.String(),
	})
	if err != nil || out.Text == "" {
		if err == nil {
			err = errors.New("empty interpretation")
		}
		s.logger.WarnContext(ctx, "extended meaning unavailable", "card_id", r.Card.ID, "error", err)
		return PremiumPlaceholder
	}
	return out.Text
}

func dailyCacheKey(deckID string, date domain.Date, userID string) string {
	return fmt.Sprintf("daily:%s:%s:%s", deckID, date, userID)
}

// cacheTTL keeps an entry until the end of its UTC day, with a floor so that
// past dates are still cached briefly.
func cacheTTL(date domain.Date, now time.Time) time.Duration {
	ttl := date.AddDays(1).Start().Sub(now)
	if ttl < time.Minute {
		return time.Hour
	}
	return ttl
}
