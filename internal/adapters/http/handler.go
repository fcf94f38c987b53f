package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kjfsoul/mystic-arcana-v3/internal/app"
	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

const (
	headerDeck      = "X-Tarot-Deck"
	noCache         = "no-cache, no-store, must-revalidate"
	dailyFailureMsg = "Failed to fetch daily tarot card"
	maxBodyBytes    = 4 << 10
)

// Services groups the application services the handler serves.
type Services struct {
	Daily   *app.DailyService
	Spreads *app.SpreadService
	History *app.HistoryService
	Decks   *app.DeckResolver
}

type Handler struct {
	svc Services
	// development exposes error details in 500 responses.
	development bool
}

func NewHandler(svc Services, development bool) *Handler {
	return &Handler{svc: svc, development: development}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	e.POST("/.netlify/functions/daily-tarot", h.Daily)
	e.POST("/v1/daily", h.Daily)

	// Draws record history for signed-in users, so both reading routes are POST.
	e.POST("/v1/spreads/:type", h.Spread)
	e.GET("/v1/decks", h.ListDecks)
	e.GET("/v1/decks/:id", h.GetDeck)
	e.GET("/v1/readings", h.Readings)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Daily(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, noCache)

	var body DailyRequest
	dec := json.NewDecoder(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	req := app.DailyRequest{UserID: body.UserID, DeckID: deckParam(c, body.Deck)}
	if body.Date != "" {
		date, err := domain.ParseDate(body.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidDate.Error()})
		}
		req.Date = date
	}

	if id, ok := identityFrom(c); ok {
		if req.UserID != "" && req.UserID != id.UserID {
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "user_id does not match token"})
		}
		req.UserID = id.UserID
	}

	reading, err := h.svc.Daily.DailyCard(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err, dailyFailureMsg)
	}
	return c.JSON(http.StatusOK, toDailyResponse(reading))
}

func (h *Handler) Spread(c echo.Context) error {
	req := app.SpreadRequest{
		ReadingType:   c.Param("type"),
		DeckID:        deckParam(c, ""),
		AllowReversed: true,
	}
	if raw := c.QueryParam("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > domain.MaxDrawCount {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidCount.Error()})
		}
		req.Count = n
	}
	if raw := c.QueryParam("reversed"); raw != "" {
		allow, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reversed must be a boolean"})
		}
		req.AllowReversed = allow
	}
	if id, ok := identityFrom(c); ok {
		req.UserID = id.UserID
	}

	reading, err := h.svc.Spreads.Draw(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err, "Failed to draw cards")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, noCache)
	return c.JSON(http.StatusOK, toSpreadResponse(reading))
}

func (h *Handler) ListDecks(c echo.Context) error {
	decks, err := h.svc.Decks.List(c.Request().Context())
	if err != nil {
		return h.mapError(c, err, "Failed to list decks")
	}
	return c.JSON(http.StatusOK, DecksResponse{Default: h.svc.Decks.Default(), Decks: decks})
}

func (h *Handler) GetDeck(c echo.Context) error {
	deck, err := h.svc.Decks.Resolve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(c, err, "Failed to load deck")
	}
	deck.CardBackImagePath = domain.CardBackPath(deck)
	return c.JSON(http.StatusOK, deck)
}

func (h *Handler) Readings(c echo.Context) error {
	id, ok := identityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}

	readings, err := h.svc.History.History(c.Request().Context(), id.UserID, limit)
	if err != nil {
		return h.mapError(c, err, "Failed to load readings")
	}
	return c.JSON(http.StatusOK, ReadingsResponse{Readings: readings})
}

// deckParam picks the request deck: explicit value, then header, then query.
func deckParam(c echo.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := c.Request().Header.Get(headerDeck); v != "" {
		return v
	}
	return c.QueryParam("deck")
}

func (h *Handler) mapError(c echo.Context, err error, message string) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrDeckNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrDeckNotFound.Error()})
	case errors.Is(err, app.ErrHistoryDisabled):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: app.ErrHistoryDisabled.Error()})
	case errors.Is(err, domain.ErrUnknownReadingType):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrUnknownReadingType.Error()})
	case errors.Is(err, domain.ErrReadingTypeDisabled),
		errors.Is(err, domain.ErrInvalidCount),
		errors.Is(err, domain.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "request_id", requestID, "error", err)
		resp := ErrorResponse{Error: message}
		if h.development {
			resp.Details = err.Error()
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}
}
