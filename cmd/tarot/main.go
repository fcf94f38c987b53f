// Command tarot prints the card of the day, fetched from a tarotd server
// with a local fallback, or draws a quick spread offline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/dailyclient"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/decks"
	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

const defaultDeck = "rider-waite"

type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

type options struct {
	server    string
	user      string
	deck      string
	date      string
	offline   bool
	draw      int
	verbose   bool
	statePath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "tarot:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var o options
	fs := flag.NewFlagSet("tarot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.server, "server", envOr("TAROT_SERVER", "http://localhost:8080"), "tarotd base URL or full endpoint URL")
	fs.StringVar(&o.user, "user", os.Getenv("TAROT_USER"), "user id for a personal card")
	fs.StringVar(&o.deck, "deck", "", "deck id; remembered for later runs")
	fs.StringVar(&o.date, "date", "", "date as YYYY-MM-DD (default today, UTC)")
	fs.BoolVar(&o.offline, "offline", false, "compute locally without contacting the server")
	fs.IntVar(&o.draw, "draw", 0, "draw N random cards instead of the daily card")
	fs.BoolVar(&o.verbose, "v", false, "log fallbacks to stderr")
	fs.StringVar(&o.statePath, "state", "", "state file (default $XDG_CONFIG_HOME/mystic-arcana/state.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	store := decks.NewEmbeddedStore()
	deck, err := activeDeck(ctx, store, &o)
	if err != nil {
		return err
	}

	if o.draw > 0 {
		return drawSpread(ctx, store, deck, o.draw, stdout)
	}

	var date domain.Date
	if o.date != "" {
		if date, err = domain.ParseDate(o.date); err != nil {
			return err
		}
	}

	var remote dailyclient.Fetcher
	if !o.offline {
		remote = dailyclient.NewClient(&http.Client{Timeout: 5 * time.Second}, o.server)
	}
	res, err := dailyclient.NewFallbackClient(remote, store, deck, logger).Daily(ctx, o.user, date)
	if err != nil {
		return err
	}
	printDaily(stdout, res)
	return nil
}

// activeDeck resolves the deck flag, falling back to the remembered deck and
// then the default. An explicit, valid deck is persisted.
func activeDeck(ctx context.Context, store *decks.EmbeddedStore, o *options) (domain.DeckConfig, error) {
	path := o.statePath
	if path == "" {
		p, err := defaultStatePath()
		if err != nil {
			return domain.DeckConfig{}, err
		}
		path = p
	}

	if o.deck != "" {
		deck, err := store.GetDeck(ctx, o.deck)
		if err != nil {
			return domain.DeckConfig{}, fmt.Errorf("deck %q: %w", o.deck, err)
		}
		if err := saveState(path, state{Deck: deck.ID}); err != nil {
			return domain.DeckConfig{}, err
		}
		return deck, nil
	}

	st, err := loadState(path)
	if err != nil {
		return domain.DeckConfig{}, err
	}
	if st.Deck != "" {
		deck, err := store.GetDeck(ctx, st.Deck)
		if err == nil {
			return deck, nil
		}
		if !errors.Is(err, domain.ErrDeckNotFound) {
			return domain.DeckConfig{}, err
		}
	}
	return store.GetDeck(ctx, defaultDeck)
}

func drawSpread(ctx context.Context, store *decks.EmbeddedStore, deck domain.DeckConfig, n int, w io.Writer) error {
	cards, err := store.ListCards(ctx)
	if err != nil {
		return err
	}
	drawn, err := domain.DrawCards(cards, n, true, stdRNG{})
	if err != nil {
		return err
	}
	for _, dc := range drawn {
		fmt.Fprintf(w, "%d. %s (%s)\n   %s\n   %s\n",
			dc.Position, dc.Name, dc.Orientation(), dc.Meaning(dc.Reversed), domain.ResolveImagePath(dc.Card, deck))
	}
	return nil
}

func printDaily(w io.Writer, r dailyclient.Result) {
	fmt.Fprintf(w, "Card of the day for %s: %s (%s)\n", r.Date, r.Card.Name, domain.OrientationOf(r.Reversed))
	fmt.Fprintf(w, "%s\n", r.Meaning)
	if len(r.Card.Keywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(r.Card.Keywords, ", "))
	}
	if r.ImagePath != "" {
		fmt.Fprintf(w, "Image: %s\n", r.ImagePath)
	}
	if r.Source == dailyclient.SourceLocal {
		fmt.Fprintln(w, "(computed locally)")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
