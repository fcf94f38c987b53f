package dailyclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// Source values reported in Result.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// Result is the daily card as shown to the user.
type Result struct {
	Card      domain.Card
	Reversed  bool
	Meaning   string
	ImagePath string
	Date      domain.Date
	Timestamp time.Time
	Source    string
}

// Fetcher is satisfied by *Client.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// FallbackClient prefers the remote endpoint and computes the card locally
// with the same selector when the endpoint fails. The two paths agree as long
// as the server and the local catalog share the same card order.
type FallbackClient struct {
	remote  Fetcher
	catalog ports.CatalogSource
	deck    domain.DeckConfig
	now     func() time.Time
	logger  *slog.Logger
}

// NewFallbackClient wires a fallback client. remote may be nil for offline use.
func NewFallbackClient(remote Fetcher, catalog ports.CatalogSource, deck domain.DeckConfig, logger *slog.Logger) *FallbackClient {
	return &FallbackClient{
		remote:  remote,
		catalog: catalog,
		deck:    deck,
		now:     time.Now,
		logger:  logger.With("component", "dailyclient"),
	}
}

func (f *FallbackClient) Daily(ctx context.Context, userID string, date domain.Date) (Result, error) {
	if date.IsZero() {
		date = domain.DateOf(f.now())
	}

	if f.remote != nil {
		resp, err := f.remote.Fetch(ctx, Request{UserID: userID, Date: date, DeckID: f.deck.ID})
		if err == nil {
			res := f.result(resp.Card, resp.IsReversed, date, resp.Timestamp, SourceRemote)
			if p := domain.SanitizeImagePath(resp.ImagePath, f.deck); p != "" {
				res.ImagePath = p
			}
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		f.logger.WarnContext(ctx, "remote daily card failed, computing locally", "error", err)
	}

	cards, err := f.catalog.ListCards(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load local catalog: %w", err)
	}
	picked, err := domain.SelectDailyCard(cards, date, userID)
	if err != nil {
		return Result{}, err
	}
	return f.result(picked.Card, picked.Reversed, date, f.now().UTC(), SourceLocal), nil
}

func (f *FallbackClient) result(card domain.Card, reversed bool, date domain.Date, ts time.Time, source string) Result {
	return Result{
		Card:      card,
		Reversed:  reversed,
		Meaning:   card.Meaning(reversed),
		ImagePath: domain.ResolveImagePath(card, f.deck),
		Date:      date,
		Timestamp: ts,
		Source:    source,
	}
}
