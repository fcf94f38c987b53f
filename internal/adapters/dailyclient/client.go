// Package dailyclient fetches the daily card from the remote endpoint and
// falls back to computing it locally when the endpoint is unreachable.
package dailyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
)

// DefaultPath is the endpoint path served by tarotd.
const DefaultPath = "/.netlify/functions/daily-tarot"

var ErrMalformedPayload = errors.New("malformed daily card payload")

// Request selects the daily card to fetch. Zero fields use server defaults.
type Request struct {
	UserID string
	Date   domain.Date
	DeckID string
}

type requestBody struct {
	UserID string `json:"user_id,omitempty"`
	Date   string `json:"date,omitempty"`
	Deck   string `json:"deck,omitempty"`
}

// Response is the endpoint's success payload. ImagePath is the server's
// rendering of card.imagePath and has not been checked against the allow-list.
type Response struct {
	Card       domain.Card
	ImagePath  string
	IsReversed bool
	Timestamp  time.Time
}

type responseBody struct {
	Card struct {
		domain.Card
		ImagePath string `json:"imagePath"`
	} `json:"card"`
	IsReversed bool      `json:"isReversed"`
	Timestamp  time.Time `json:"timestamp"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Client calls the remote daily endpoint with a fixed retry budget.
type Client struct {
	httpClient *http.Client
	endpoint   string
	attempts   int
	backoff    time.Duration
}

type Option func(*Client)

// WithRetry sets the total number of attempts and the fixed pause between them.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// NewClient targets serverURL + DefaultPath unless serverURL already names a path.
func NewClient(httpClient *http.Client, serverURL string, opts ...Option) *Client {
	endpoint := strings.TrimRight(serverURL, "/")
	if u, err := url.Parse(endpoint); err == nil && u.Path == "" {
		endpoint += DefaultPath
	}
	c := &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		attempts:   2,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Fetch posts the request, retrying on any failure until the budget is spent.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, err := c.fetchOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == c.attempts {
			break
		}
		if err := sleep(ctx, c.backoff); err != nil {
			return Response{}, err
		}
	}
	return Response{}, fmt.Errorf("fetch daily card after %d attempts: %w", c.attempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, req Request) (Response, error) {
	body := requestBody{UserID: req.UserID, Deck: req.DeckID}
	if !req.Date.IsZero() {
		body.Date = req.Date.String()
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return Response{}, fmt.Errorf("status %d: %s", resp.StatusCode, eb.Error)
		}
		return Response{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out responseBody
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if out.Card.ID == "" {
		return Response{}, fmt.Errorf("%w: missing card id", ErrMalformedPayload)
	}
	return Response{
		Card:       out.Card.Card,
		ImagePath:  out.Card.ImagePath,
		IsReversed: out.IsReversed,
		Timestamp:  out.Timestamp,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
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
