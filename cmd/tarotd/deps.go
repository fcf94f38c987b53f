package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/authjwt"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/cache"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/decks"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/llm/openrouter"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/postgres"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/sqlite"
	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/supabase"
	"github.com/kjfsoul/mystic-arcana-v3/internal/config"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

// deps holds the adapters selected by configuration. Optional ones are nil
// interfaces when disabled.
type deps struct {
	decks        *decks.EmbeddedStore
	catalog      ports.CatalogSource
	localCatalog ports.CatalogSource
	readings     ports.ReadingStore
	subs         ports.SubscriptionChecker
	cache        ports.DailyCache
	interpreter  ports.Interpreter
	verifier     ports.TokenVerifier

	closers []func()
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{}

	if cfg.DecksFile != "" {
		d.decks = decks.NewEmbeddedStoreWithDecks(cfg.DecksFile)
	} else {
		d.decks = decks.NewEmbeddedStore()
	}
	if _, err := d.decks.GetDeck(ctx, cfg.DefaultDeck); err != nil {
		return nil, fmt.Errorf("default deck %q: %w", cfg.DefaultDeck, err)
	}
	d.localCatalog = d.decks

	var sb *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceRoleKey != "" {
		sb = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	}

	var pgReadings *postgres.ReadingRepository
	var pgCards *postgres.CardRepository
	if cfg.CatalogSource == config.SourcePostgres || cfg.ReadingsStore == config.StorePostgres {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL, 0)
		if err != nil {
			d.close()
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
		pgReadings = postgres.NewReadingRepository(pool)
		pgCards = postgres.NewCardRepository(pool)
	}

	switch cfg.CatalogSource {
	case config.SourceSupabase:
		d.catalog = supabase.NewCardRepository(sb)
		logger.Info("remote card catalog", "source", d.catalog.Name(), "table", "tarot_cards", "order_column", supabase.OrderColumn)
	case config.SourcePostgres:
		d.catalog = pgCards
		logger.Info("remote card catalog", "source", d.catalog.Name(), "table", "tarot_cards", "order_column", postgres.OrderColumn)
	default:
		d.catalog = d.decks
	}

	switch cfg.ReadingsStore {
	case config.StoreSupabase:
		d.readings = supabase.NewReadingRepository(sb)
		d.subs = supabase.NewSubscriptionRepository(sb)
	case config.StorePostgres:
		d.readings = pgReadings
		d.subs = pgReadings
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			d.close()
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = store.Close() })
		d.readings = store
		d.subs = store

		version, dirty, err := sqlite.SchemaVersion(cfg.SQLitePath)
		switch {
		case err != nil:
			logger.Warn("sqlite schema version unknown", "path", cfg.SQLitePath, "error", err)
		case dirty:
			logger.Warn("sqlite schema is dirty", "path", cfg.SQLitePath, "version", version)
		default:
			logger.Info("sqlite reading store", "path", cfg.SQLitePath, "schema_version", version)
		}
	}

	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		rc, err := cache.NewRedisCache(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, daily cache disabled", "error", err)
		} else {
			d.closers = append(d.closers, func() { _ = rc.Close() })
			d.cache = rc
		}
	}

	if cfg.OpenRouterAPIKey != "" {
		d.interpreter = openrouter.NewClient(
			&http.Client{Timeout: cfg.LLMTimeout},
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterBaseURL,
			cfg.LLMModel,
			cfg.LLMFallbackModels,
			logger,
		)
	}

	switch {
	case cfg.SupabaseJWTSecret != "":
		d.verifier = authjwt.NewVerifier(cfg.SupabaseJWTSecret)
	case cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "":
		d.verifier = supabase.NewGoTrueVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	default:
		logger.Info("no auth provider configured, bearer tokens are ignored")
	}

	return d, nil
}
