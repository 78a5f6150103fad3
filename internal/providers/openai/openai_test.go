package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdk "github.com/openai/openai-go"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// wireRequest is the subset of the Responses request body the tests assert on.
type wireRequest struct {
	Model           string   `json:"model"`
	Input           string   `json:"input"`
	Instructions    string   `json:"instructions"`
	MaxOutputTokens int      `json:"max_output_tokens"`
	Temperature     *float64 `json:"temperature"`
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_OPENAI_KEY", "sk-test")

	c, err := New(config.ProviderConfig{
		Model:     "o4-mini",
		APIKeyEnv: "TEST_OPENAI_KEY",
		BaseURL:   srv.URL + "/v1",
		MaxTokens: 256,
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCompleteRequestShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/responses" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var body wireRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Model != "o4-mini" || body.Input != "where next?" || body.Instructions != "be brief" {
			t.Errorf("body = %+v", body)
		}
		if body.MaxOutputTokens != 256 {
			t.Errorf("max_output_tokens = %d, want config default 256", body.MaxOutputTokens)
		}
		if body.Temperature != nil {
			t.Errorf("temperature = %v, want omitted", *body.Temperature)
		}
		writeJSON(w, http.StatusOK, `{"id":"resp_1","object":"response","output":[{"type":"reasoning","id":"rs_1","summary":[]},{"type":"message","id":"msg_1","role":"assistant","status":"completed","content":[{"type":"output_text","text":"UP LEFT","annotations":[]}]}]}`)
	})

	text, err := c.Complete(context.Background(), registry.Request{System: "be brief", Prompt: "where next?"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "UP LEFT" {
		t.Errorf("text = %q, want %q", text, "UP LEFT")
	}
}

func TestCompleteMaxOutputTokens(t *testing.T) {
	tests := []struct {
		name string
		req  registry.Request
		want int
	}{
		{name: "config default", req: registry.Request{Prompt: "p"}, want: 256},
		{name: "request override", req: registry.Request{Prompt: "p", MaxTokens: 64}, want: 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var body wireRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.MaxOutputTokens != tt.want {
					t.Errorf("max_output_tokens = %d, want %d", body.MaxOutputTokens, tt.want)
				}
				writeJSON(w, http.StatusOK, `{"output":[{"type":"message","content":[{"type":"output_text","text":"DOWN"}]}]}`)
			})
			if _, err := c.Complete(context.Background(), tt.req); err != nil {
				t.Fatalf("Complete: %v", err)
			}
		})
	}
}

func TestCompleteErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		calls := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			writeJSON(w, http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"requests"}}`)
		})
		_, err := c.Complete(context.Background(), registry.Request{Prompt: "p"})
		var apiErr *sdk.Error
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("err = %v, want API error with status 429", err)
		}
		if !strings.Contains(err.Error(), "rate limited") {
			t.Errorf("err = %v, want message in error", err)
		}
		if calls != 1 {
			t.Errorf("server saw %d calls, want 1 (no retries)", calls)
		}
	})

	t.Run("empty output", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"output":[]}`)
		})
		if _, err := c.Complete(context.Background(), registry.Request{Prompt: "p"}); !errors.Is(err, ErrEmptyOutput) {
			t.Errorf("err = %v, want ErrEmptyOutput", err)
		}
	})
}

func TestNewRequiresKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_MISSING", "")
	if _, err := New(config.ProviderConfig{Model: "o4-mini", APIKeyEnv: "TEST_OPENAI_MISSING"}); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists(Name) {
		t.Errorf("provider %q not registered", Name)
	}
}
