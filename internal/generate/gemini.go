package generate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemma-3-4b-it"

// Gemini generates completions with hosted Gemini/Gemma models.
type Gemini struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGemini creates a Gemini API runtime. baseURL is optional and mostly
// useful for proxies and tests.
func NewGemini(ctx context.Context, apiKey, model, baseURL string, log zerolog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrDependencyUnavailable("gemini backend requires an API key")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, log: log}, nil
}

func (g *Gemini) Name() string { return BackendGemini }

// Close is a no-op; the genai client holds no resources beyond its HTTP client.
func (g *Gemini) Close() error { return nil }

func (g *Gemini) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	// Validate bounds MaxNewTokens by MaxNewTokensLimit.
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxNewTokens),
		CandidateCount:  1,
	}
	if opts.Greedy() {
		cfg.Temperature = genai.Ptr[float32](0)
		cfg.TopK = genai.Ptr[float32](1)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	g.log.Debug().Str("runtime", BackendGemini).Str("model", g.model).Int("chars", len(text)).Msg("generate done")
	return text, nil
}
