package ports

import (
	"context"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

// Reading is a history entry for a reading shown to a user.
type Reading struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	CardID      string             `json:"card_id"`
	ReadingType domain.ReadingType `json:"reading_type"`
	IsReversed  bool               `json:"is_reversed"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ReadingStore persists reading history.
type ReadingStore interface {
	SaveReading(ctx context.Context, r Reading) error
	ListReadings(ctx context.Context, userID string, limit int) ([]Reading, error)
}

// SubscriptionChecker reports whether a user has premium access.
type SubscriptionChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// DailyCache memoizes computed daily cards.
type DailyCache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (entry CachedDaily, ok bool, err error)
	Set(ctx context.Context, key string, entry CachedDaily, ttl time.Duration) error
}

// CachedDaily is the cacheable part of a daily reading.
type CachedDaily struct {
	Card      domain.Card `json:"card"`
	Reversed  bool        `json:"is_reversed"`
	ImagePath string      `json:"image_path"`
	Source    string      `json:"source"`
}
