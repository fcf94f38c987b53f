package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// RetryPolicy is a fixed-backoff retry budget. Attempts counts the first try.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy tries twice, one second apart.
var DefaultRetryPolicy = RetryPolicy{Attempts: 2, Backoff: time.Second}

// Catalog is a loaded card catalog and the source that served it.
type Catalog struct {
	Cards  []domain.Card
	Source string
}

// CatalogLoader reads the catalog from a primary source with retries and
// falls back to a local static source when the primary keeps failing.
type CatalogLoader struct {
	primary  ports.CatalogSource
	fallback ports.CatalogSource
	policy   RetryPolicy
	logger   *slog.Logger
}

// NewCatalogLoader builds a loader. fallback may be nil, or the same source
// as primary, in which case no fallback is attempted.
func NewCatalogLoader(primary, fallback ports.CatalogSource, policy RetryPolicy, logger *slog.Logger) *CatalogLoader {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if fallback == primary {
		fallback = nil
	}
	return &CatalogLoader{
		primary:  primary,
		fallback: fallback,
		policy:   policy,
		logger:   logger.With("component", "app.catalog"),
	}
}

func (l *CatalogLoader) Load(ctx context.Context) (Catalog, error) {
	cards, err := l.loadWithRetry(ctx)
	if err == nil {
		return Catalog{Cards: cards, Source: l.primary.Name()}, nil
	}
	if l.fallback == nil || ctx.Err() != nil {
		return Catalog{}, fmt.Errorf("load catalog from %s: %w", l.primary.Name(), err)
	}

	l.logger.WarnContext(ctx, "primary catalog unavailable, using local catalog",
		"primary", l.primary.Name(),
		"fallback", l.fallback.Name(),
		"error", err,
	)

	cards, fbErr := fetchCatalog(ctx, l.fallback)
	if fbErr != nil {
		return Catalog{}, fmt.Errorf("%w: %s: %v; %s: %w",
			domain.ErrCatalogUnavailable, l.primary.Name(), err, l.fallback.Name(), fbErr)
	}
	return Catalog{Cards: cards, Source: l.fallback.Name()}, nil
}

func (l *CatalogLoader) loadWithRetry(ctx context.Context) ([]domain.Card, error) {
	var lastErr error
	for attempt := 1; attempt <= l.policy.Attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, l.policy.Backoff); err != nil {
				return nil, err
			}
		}
		cards, err := fetchCatalog(ctx, l.primary)
		if err == nil {
			return cards, nil
		}
		lastErr = err
		l.logger.DebugContext(ctx, "catalog fetch failed", "source", l.primary.Name(), "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

// fetchCatalog treats an empty or malformed catalog as a failed fetch.
func fetchCatalog(ctx context.Context, src ports.CatalogSource) ([]domain.Card, error) {
	cards, err := src.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("malformed catalog from %s: %w", src.Name(), err)
		}
	}
	return cards, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
