package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

const (
	reflectionTemperature = 0.8
	reflectionMaxTokens   = 600
)

// Client implements ports.Interpreter via the OpenRouter API. It writes the
// extended daily meaning shown to premium readers.
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
	// models is the primary model followed by its fallbacks.
	models []string
	logger *slog.Logger
}

func NewClient(httpClient *http.Client, apiKey, baseURL, model string, fallbackModels []string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
		models:     append([]string{model}, fallbackModels...),
		logger:     logger.With("component", "llm.openrouter"),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// reflectionRequest asks one model for the reflection on one card. The
// conversation is the system rules, the card sheet and, on a repair attempt,
// the rejected reply plus the correction.
type reflectionRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
}

type responseFormat struct {
	Type string `json:"type"`
}

func newReflectionRequest(model string, card cardSheet) reflectionRequest {
	return reflectionRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: card.String()},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    reflectionTemperature,
		MaxTokens:      reflectionMaxTokens,
	}
}

// repair continues the conversation after a reply that was not a reflection.
func (r reflectionRequest) repair(reply string) reflectionRequest {
	msgs := make([]message, 0, len(r.Messages)+2)
	msgs = append(msgs, r.Messages...)
	msgs = append(msgs,
		message{Role: "assistant", Content: reply},
		message{Role: "user", Content: repairPrompt},
	)
	r.Messages = msgs
	return r
}

type completion struct {
	Model   string `json:"model"`
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// reflection is the JSON object the model must answer with.
type reflection struct {
	Text string `json:"text"`
}

// Interpret tries each configured model in turn until one writes a reflection.
func (c *Client) Interpret(ctx context.Context, in ports.InterpretInput) (ports.InterpretOutput, error) {
	card := sheetFor(in)

	var lastErr error
	for i, model := range c.models {
		text, err := c.reflect(ctx, newReflectionRequest(model, card))
		if err == nil {
			return ports.InterpretOutput{Text: text, Model: model}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if i < len(c.models)-1 {
			c.logger.WarnContext(ctx, "model failed, trying next", "model", model, "card", in.CardName, "error", err)
		}
	}
	return ports.InterpretOutput{}, lastErr
}

// reflect sends req and allows the model one repair turn when its reply is
// not a usable reflection.
func (c *Client) reflect(ctx context.Context, req reflectionRequest) (string, error) {
	reply, err := c.send(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}
	text, err := parseReflection(reply)
	if err == nil {
		return text, nil
	}

	c.logger.WarnContext(ctx, "unusable reflection, asking for a repair", "model", req.Model, "error", err)
	reply, err = c.send(ctx, req.repair(reply))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}
	text, err = parseReflection(reply)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidLLMJSON, err)
	}
	return text, nil
}

func (c *Client) send(ctx context.Context, req reflectionRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out completion
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// parseReflection accepts the JSON object, tolerating a markdown code fence.
func parseReflection(reply string) (string, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	var r reflection
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &r); err != nil {
		return "", err
	}
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return "", errors.New("empty text field")
	}
	return text, nil
}

// cardSheet is the card of the day as the model sees it.
type cardSheet struct {
	Date        string
	Name        string
	Orientation domain.Orientation
	Keywords    []string
	Meaning     string
}

func sheetFor(in ports.InterpretInput) cardSheet {
	return cardSheet{
		Date:        in.Date,
		Name:        in.CardName,
		Orientation: domain.OrientationOf(in.Reversed),
		Keywords:    in.Keywords,
		Meaning:     in.Meaning,
	}
}

func (s cardSheet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", s.Date)
	fmt.Fprintf(&b, "Card of the day: %s (%s)\n", s.Name, s.Orientation)
	if len(s.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(s.Keywords, ", "))
	}
	if s.Meaning != "" {
		fmt.Fprintf(&b, "Meaning: %s\n", s.Meaning)
	}
	b.WriteString("\nWrite the extended meaning for this card.")
	return b.String()
}

const reflectionSchema = `{"text": "<two or three short paragraphs>"}`

const systemPrompt = `You are a tarot reader writing a deeper reflection on a single daily card.

Rules:
- Stay reflective and balanced; describe tendencies, not certainties.
- Never provide medical, legal, or financial advice.
- Never predict specific outcomes or disasters.
- Address the reader in the second person and end with one reflective question.
- Honour the card's orientation: a reversed card speaks of blocked or inward energy.

Answer with one JSON object and nothing else: ` + reflectionSchema

const repairPrompt = `That reply could not be used. Answer again with only the JSON object ` +
	reflectionSchema + `, no markdown and no commentary.`
