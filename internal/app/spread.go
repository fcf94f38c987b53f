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

// ErrHistoryDisabled is returned when no reading store is configured.
var ErrHistoryDisabled = errors.New("reading history is not enabled")

// SpreadRequest asks for a random multi-card reading.
type SpreadRequest struct {
	ReadingType   string
	Count         int
	DeckID        string
	AllowReversed bool
	UserID        string
}

// SpreadCard is a drawn card with its resolved image.
type SpreadCard struct {
	domain.DrawnCard
	ImagePath     string
	ActiveMeaning string
}

// SpreadReading is the application-level output of a draw.
type SpreadReading struct {
	ReadingType domain.ReadingType
	DeckID      string
	Cards       []SpreadCard
	Source      string
	Timestamp   time.Time
}

// SpreadService performs non-deterministic draws for multi-card spreads.
type SpreadService struct {
	catalog  *CatalogLoader
	decks    *DeckResolver
	rng      domain.RNG
	readings ports.ReadingStore
	logger   *slog.Logger
}

func NewSpreadService(catalog *CatalogLoader, decks *DeckResolver, rng domain.RNG, readings ports.ReadingStore, logger *slog.Logger) *SpreadService {
	return &SpreadService{
		catalog:  catalog,
		decks:    decks,
		rng:      rng,
		readings: readings,
		logger:   logger.With("component", "app.spread"),
	}
}

func (s *SpreadService) Draw(ctx context.Context, req SpreadRequest) (SpreadReading, error) {
	rt, err := domain.ParseReadingType(req.ReadingType)
	if err != nil {
		return SpreadReading{}, fmt.Errorf("reading type %q: %w", req.ReadingType, err)
	}

	deck, err := s.decks.Resolve(ctx, req.DeckID)
	if err != nil {
		return SpreadReading{}, err
	}
	if !deck.Enables(rt) {
		return SpreadReading{}, fmt.Errorf("deck %s: %w", deck.ID, domain.ErrReadingTypeDisabled)
	}

	count := req.Count
	if count == 0 {
		count = rt.DefaultCount()
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return SpreadReading{}, fmt.Errorf("load catalog: %w", err)
	}

	drawn, err := domain.DrawCards(catalog.Cards, count, req.AllowReversed, s.rng)
	if err != nil {
		return SpreadReading{}, fmt.Errorf("draw cards: %w", err)
	}

	now := time.Now().UTC()
	cards := make([]SpreadCard, len(drawn))
	for i, dc := range drawn {
		cards[i] = SpreadCard{
			DrawnCard:     dc,
			ImagePath:     domain.ResolveImagePath(dc.Card, deck),
			ActiveMeaning: dc.Meaning(dc.Reversed),
		}
	}

	if req.UserID != "" && s.readings != nil {
		for _, c := range cards {
			err := s.readings.SaveReading(ctx, ports.Reading{
				ID:          uuid.NewString(),
				UserID:      req.UserID,
				CardID:      c.ID,
				ReadingType: rt,
				IsReversed:  c.Reversed,
				CreatedAt:   now,
			})
			if err != nil {
				s.logger.ErrorContext(ctx, "save reading history failed", "user_id", req.UserID, "error", err)
				break
			}
		}
	}

	return SpreadReading{
		ReadingType: rt,
		DeckID:      deck.ID,
		Cards:       cards,
		Source:      catalog.Source,
		Timestamp:   now,
	}, nil
}

// HistoryService lists a user's past readings.
type HistoryService struct {
	readings ports.ReadingStore
}

func NewHistoryService(readings ports.ReadingStore) *HistoryService {
	return &HistoryService{readings: readings}
}

const maxHistoryLimit = 100

func (s *HistoryService) History(ctx context.Context, userID string, limit int) ([]ports.Reading, error) {
	if s.readings == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	readings, err := s.readings.ListReadings(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return readings, nil
}
