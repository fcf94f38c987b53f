package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources. The supabase and postgres sources read tarot_cards and
// require an integer position column ordering rows like the embedded catalog.
const (
	SourceEmbedded = "embedded"
	SourceSupabase = "supabase"
	SourcePostgres = "postgres"
)

// Reading history stores.
const (
	StoreNone     = "none"
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr string
	LogLevel slog.Level
	// Env is "development" or "production"; development exposes error details.
	Env string

	CatalogSource string
	ReadingsStore string
	DefaultDeck   string
	DecksFile     string

	FetchAttempts int
	FetchBackoff  time.Duration

	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseAnonKey        string
	SupabaseJWTSecret      string

	DatabaseURL string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	LLMModel          string
	LLMFallbackModels []string
	LLMTimeout        time.Duration
}

// Load reads configuration from the environment. Values in a .env file in
// the working directory are applied first without overriding real env vars.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	c := Config{
		HTTPAddr:               envOr("HTTP_ADDR", ":8080"),
		Env:                    envOr("APP_ENV", "production"),
		CatalogSource:          envOr("CATALOG_SOURCE", SourceEmbedded),
		ReadingsStore:          envOr("READINGS_STORE", StoreNone),
		DefaultDeck:            envOr("DEFAULT_DECK", "rider-waite"),
		DecksFile:              os.Getenv("DECKS_FILE"),
		SupabaseURL:            strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseAnonKey:        os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SQLitePath:             envOr("SQLITE_PATH", "readings.db"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		AllowedOrigins:         splitList(envOr("ALLOWED_ORIGINS", "*")),
		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:      envOr("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMModel:               envOr("LLM_MODEL", "qwen/qwen3-4b:free"),
		LLMFallbackModels:      splitList(os.Getenv("LLM_FALLBACK_MODELS")),
	}

	var err error
	if c.FetchAttempts, err = envInt("FETCH_ATTEMPTS", 2); err != nil {
		return Config{}, err
	}
	if c.FetchBackoff, err = envDuration("FETCH_BACKOFF", time.Second); err != nil {
		return Config{}, err
	}
	if c.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if c.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 20); err != nil {
		return Config{}, err
	}
	if c.LLMTimeout, err = envDuration("LLM_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if c.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
	} else {
		c.RateLimitRPS = 10
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.CatalogSource {
	case SourceEmbedded:
	case SourceSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required when CATALOG_SOURCE=supabase")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q", c.CatalogSource)
	}

	switch c.ReadingsStore {
	case StoreNone, StoreSQLite:
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required when READINGS_STORE=supabase")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when READINGS_STORE=postgres")
		}
	default:
		return fmt.Errorf("invalid READINGS_STORE %q", c.ReadingsStore)
	}

	if c.FetchAttempts < 1 {
		return fmt.Errorf("FETCH_ATTEMPTS must be at least 1")
	}
	return nil
}

// Development reports whether error details may be exposed to clients.
func (c Config) Development() bool {
	return c.Env == "development"
}

// AuthEnabled reports whether bearer tokens can be verified.
func (c Config) AuthEnabled() bool {
	return c.SupabaseJWTSecret != "" || (c.SupabaseURL != "" && c.SupabaseAnonKey != "")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
