package openrouter_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kjfsoul/mystic-arcana-v3/internal/adapters/llm/openrouter"
	"github.com/kjfsoul/mystic-arcana-v3/internal/domain"
	"github.com/kjfsoul/mystic-arcana-v3/internal/ports"
)

func testInput() ports.InterpretInput {
	return ports.InterpretInput{
		CardName: "Ace of Swords",
		Reversed: true,
		Keywords: []string{"clarity", "truth"},
		Meaning:  "Confusion, clouded judgment.",
		Date:     "2024-01-01",
	}
}

func chatReply(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type chatBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	MaxTokens int `json:"max_tokens"`
}

func TestClient_Interpret_Success(t *testing.T) {
	var got chatBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("bad auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("bad content-type: %s", r.Header.Get("Content-Type"))
		}

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		chatReply(w, `{"text":"A sharper truth waits beneath the fog."}`)
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "test-key", srv.URL, "test-model", nil, slog.Default())

	out, err := client.Interpret(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "A sharper truth waits beneath the fog." {
		t.Errorf("unexpected text: %s", out.Text)
	}
	if out.Model != "test-model" {
		t.Errorf("unexpected model: %s", out.Model)
	}

	if got.Model != "test-model" {
		t.Errorf("request model: %v", got.Model)
	}
	if got.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %q", got.ResponseFormat.Type)
	}
	if got.MaxTokens <= 0 {
		t.Errorf("expected a token limit, got %d", got.MaxTokens)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(got.Messages))
	}
	user := got.Messages[1].Content
	for _, want := range []string{"Ace of Swords (reversed)", "clarity, truth", "2024-01-01"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestClient_Interpret_CodeFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(w, "```json\n{\"text\":\"Fenced.\"}\n```")
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil, slog.Default())

	out, err := client.Interpret(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "Fenced." {
		t.Errorf("unexpected text: %s", out.Text)
	}
}

func TestClient_Interpret_BadJSON_Retry_Success(t *testing.T) {
	callCount := 0
	var repair chatBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount == 1 {
			chatReply(w, "this is not json at all")
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&repair)
		chatReply(w, `{"text":"Retried reflection."}`)
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil, slog.Default())

	out, err := client.Interpret(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls (original + retry), got %d", callCount)
	}
	if out.Text != "Retried reflection." {
		t.Errorf("unexpected text: %s", out.Text)
	}

	// The repair turn carries the rejected reply back to the model.
	if len(repair.Messages) != 4 {
		t.Fatalf("expected 4 messages in the repair turn, got %d", len(repair.Messages))
	}
	if repair.Messages[2].Role != "assistant" || repair.Messages[2].Content != "this is not json at all" {
		t.Errorf("unexpected assistant message: %+v", repair.Messages[2])
	}
	if repair.Messages[3].Role != "user" {
		t.Errorf("expected a user correction, got %s", repair.Messages[3].Role)
	}
}

func TestClient_Interpret_BadJSON_Retry_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(w, "still not json")
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil, slog.Default())

	_, err := client.Interpret(context.Background(), testInput())
	if !errors.Is(err, domain.ErrInvalidLLMJSON) {
		t.Fatalf("expected ErrInvalidLLMJSON, got %v", err)
	}
}

func TestClient_Interpret_EmptyTextIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(w, `{"text":"   "}`)
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil, slog.Default())

	_, err := client.Interpret(context.Background(), testInput())
	if !errors.Is(err, domain.ErrInvalidLLMJSON) {
		t.Fatalf("expected ErrInvalidLLMJSON, got %v", err)
	}
}

func TestClient_Interpret_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"provider overloaded"}}`))
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil, slog.Default())

	_, err := client.Interpret(context.Background(), testInput())
	if !errors.Is(err, domain.ErrUpstreamLLM) {
		t.Fatalf("expected ErrUpstreamLLM, got %v", err)
	}
	if !strings.Contains(err.Error(), "provider overloaded") {
		t.Errorf("expected upstream message in error, got %v", err)
	}
}

func TestClient_Interpret_FallbackModel(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		models = append(models, body.Model)
		if body.Model == "primary" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatReply(w, `{"text":"From the backup."}`)
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "primary", []string{"backup"}, slog.Default())

	out, err := client.Interpret(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Model != "backup" {
		t.Errorf("expected backup model, got %s", out.Model)
	}
	if strings.Join(models, ",") != "primary,backup" {
		t.Errorf("unexpected call order: %v", models)
	}
}
