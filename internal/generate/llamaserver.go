package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LlamaServer implements Runtime by talking to a running llama.cpp server over
// its OpenAI-compatible /v1/completions endpoint with streaming enabled.
type LlamaServer struct {
	baseURL    string
	apiKey     string
	model      string
	reqTimeout time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// NewLlamaServer constructs a server-backed runtime. reqTimeout bounds a single
// Generate call; connectTimeout bounds dialing.
func NewLlamaServer(baseURL, apiKey, model string, reqTimeout, connectTimeout time.Duration, log zerolog.Logger) *LlamaServer {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0: deadlines travel on the request context.
	return &LlamaServer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      strings.TrimSpace(model),
		reqTimeout: reqTimeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        log,
	}
}

// completionRequest is the payload for /v1/completions. Temperature is always
// sent because 0 is meaningful.
type completionRequest struct {
	Model       string   `json:"model,omitempty"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float64  `json:"temperature"`
	TopK        int      `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
}

// streamChoice is a minimal subset of an OpenAI streaming chunk. Completion
// chunks carry "text"; chat-style chunks carry "delta.content".
type streamChoice struct {
	Text  string `json:"text"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type streamResponse struct {
	Object  string         `json:"object"`
	Choices []streamChoice `json:"choices"`
}

func (s *LlamaServer) Name() string { return BackendLlamaServer }

func (s *LlamaServer) Close() error {
	if tr, ok := s.httpClient.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	return nil
}

// Check probes /health.
func (s *LlamaServer) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return runtimeError{status: resp.StatusCode, body: string(b)}
	}
	return nil
}

func (s *LlamaServer) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if s.httpClient == nil {
		return "", errors.New("llama server runtime not initialized")
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if s.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reqTimeout)
		defer cancel()
	}
	payload := completionRequest{
		Model:       s.model,
		Prompt:      prompt,
		MaxTokens:   opts.MaxNewTokens,
		Temperature: opts.Temperature,
		Stream:      true,
	}
	if opts.Greedy() {
		payload.Temperature = 0
		payload.TopK = 1
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", runtimeError{status: resp.StatusCode, body: string(b)}
	}
	return s.readStream(ctx, resp.Body)
}

// readStream collects text fragments from SSE "data:" lines. Servers that
// answer with a single JSON document (stream ignored) are handled too.
func (s *LlamaServer) readStream(ctx context.Context, body io.Reader) (string, error) {
	r := bufio.NewReader(body)
	var out strings.Builder
	for {
		line, err := r.ReadString('\n')
		if l := strings.TrimSpace(line); l != "" {
			data := l
			if strings.HasPrefix(strings.ToLower(l), "data:") {
				data = strings.TrimSpace(l[len("data:"):])
			}
			if data == "[DONE]" {
				break
			}
			if frag, ok := decodeChunk(data); ok {
				out.WriteString(frag)
			} else {
				s.log.Debug().Str("runtime", BackendLlamaServer).Str("line", l).Msg("unknown stream line")
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return out.String(), ctx.Err()
			}
			s.log.Warn().Str("runtime", BackendLlamaServer).Err(err).Msg("stream read error")
			return out.String(), err
		}
	}
	return out.String(), nil
}

func decodeChunk(data string) (string, bool) {
	var msg streamResponse
	if err := json.Unmarshal([]byte(data), &msg); err == nil && len(msg.Choices) > 0 {
		c := msg.Choices[0]
		if c.Text != "" {
			return c.Text, true
		}
		return c.Delta.Content, true
	}
	// llama.cpp native /completion objects carry "content".
	var generic map[string]any
	if err := json.Unmarshal([]byte(data), &generic); err == nil {
		if tok, ok := generic["content"].(string); ok {
			return tok, true
		}
	}
	return "", false
}
