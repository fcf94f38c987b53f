package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kjfsoul/mystic-arcana-v3/internal/adapters/http"
	"github.com/kjfsoul/mystic-arcana-v3/internal/app"
	"github.com/kjfsoul/mystic-arcana-v3/internal/config"
)

// stdRNG delegates to math/rand/v2 (auto-seeded).
type stdRNG struct{}

func (stdRNG) Intn(n int) int { return rand.IntN(n) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer deps.close()

	catalog := app.NewCatalogLoader(deps.catalog, deps.localCatalog,
		app.RetryPolicy{Attempts: cfg.FetchAttempts, Backoff: cfg.FetchBackoff}, logger)
	resolver := app.NewDeckResolver(deps.decks, cfg.DefaultDeck)

	dailyOpts := []app.DailyOption{}
	if deps.cache != nil {
		dailyOpts = append(dailyOpts, app.WithCache(deps.cache))
	}
	if deps.readings != nil {
		dailyOpts = append(dailyOpts, app.WithReadingStore(deps.readings))
	}
	if deps.subs != nil {
		dailyOpts = append(dailyOpts, app.WithSubscriptions(deps.subs))
	}
	if deps.interpreter != nil {
		dailyOpts = append(dailyOpts, app.WithInterpreter(deps.interpreter))
	}

	handler := httpadapter.NewHandler(httpadapter.Services{
		Daily:   app.NewDailyService(catalog, resolver, logger, dailyOpts...),
		Spreads: app.NewSpreadService(catalog, resolver, stdRNG{}, deps.readings, logger),
		History: app.NewHistoryService(deps.readings),
		Decks:   resolver,
	}, cfg.Development())

	e := httpadapter.NewServer(handler, httpadapter.ServerConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Verifier:       deps.verifier,
	}, logger)

	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTPAddr,
			"catalog", deps.catalog.Name(),
			"readings", cfg.ReadingsStore,
			"default_deck", cfg.DefaultDeck,
		)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
