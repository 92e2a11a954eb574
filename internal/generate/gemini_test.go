package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestGemini_Generate(t *testing.T) {
	var body map[string]any
	var path, key string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		key = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ИНН: 7707083893"}]},"finishReason":"STOP"}]}`))
	}))
	defer ts.Close()

	g, err := NewGemini(context.Background(), "test-key", "", ts.URL, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer g.Close()
	out, err := g.Generate(context.Background(), "prompt", testOpts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "ИНН: 7707083893" {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(path, defaultGeminiModel) || !strings.HasSuffix(path, ":generateContent") {
		t.Fatalf("unexpected path: %s", path)
	}
	if key != "test-key" {
		t.Fatalf("api key header=%q", key)
	}
	gc, _ := body["generationConfig"].(map[string]any)
	if gc == nil {
		t.Fatalf("missing generationConfig: %v", body)
	}
	if gc["temperature"] != float64(0) || gc["topK"] != float64(1) || gc["maxOutputTokens"] != float64(16) {
		t.Fatalf("unexpected generationConfig: %v", gc)
	}
}

func TestGemini_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer ts.Close()

	g, err := NewGemini(context.Background(), "k", "gemma-3-1b-it", ts.URL, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := g.Generate(context.Background(), "p", testOpts); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestGemini_RequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "", "", zerolog.Nop()); !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}

func TestGemini_RejectsOversizedTokenBudget(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	g, err := NewGemini(context.Background(), "k", "", ts.URL, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	over := int64(MaxNewTokensLimit) + 1
	_, err = g.Generate(context.Background(), "p", Options{MaxNewTokens: int(over)})
	if !IsInvalidOptions(err) {
		t.Fatalf("expected invalid options, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("request sent with an oversized token budget")
	}
}
