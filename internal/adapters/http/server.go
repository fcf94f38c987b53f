package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

type ServerConfig struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	// Verifier is optional; without it bearer tokens are ignored.
	Verifier ports.TokenVerifier
}

// NewServer builds the echo instance with the middleware chain and routes.
func NewServer(h *Handler, cfg ServerConfig, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(RequestIDMiddleware())
	e.Use(LoggingMiddleware(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAuthorization,
			headerDeck,
			headerRequestID,
		},
	}))
	if cfg.RateLimitRPS > 0 {
		e.Use(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	}
	e.Use(AuthMiddleware(cfg.Verifier))

	h.Register(e)
	return e
}
