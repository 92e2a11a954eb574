package generate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"extractd/pkg/types"
)

// Backend names accepted by New.
const (
	BackendNone        = "none"
	BackendLlama       = "llama"
	BackendLlamaServer = "llama-server"
	BackendGemini      = "gemini"
)

// Config selects and parameterizes a runtime. No environment lookups happen
// here; callers resolve configuration first.
type Config struct {
	Backend string
	// Model is a registry id or a path (llama), a server-side model name
	// (llama-server) or a hosted model name (gemini).
	Model          string
	ServerURL      string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	ContextSize    int
	Threads        int
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendNone, BackendLlama, BackendLlamaServer, BackendGemini}
}

// LlamaBuilt reports whether the in-process runtime was compiled in.
func LlamaBuilt() bool { return llamaBuilt }

// New builds the configured runtime. models is the on-disk registry used to
// resolve model ids for the in-process backend.
func New(ctx context.Context, cfg Config, models []types.Model, log zerolog.Logger) (Runtime, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return Disabled{}, nil
	case BackendLlama:
		path, err := resolveModelPath(cfg.Model, models)
		if err != nil {
			return nil, err
		}
		rt, err := NewLlama(path, cfg.ContextSize, cfg.Threads, log)
		if err != nil {
			return nil, err
		}
		return rt, nil
	case BackendLlamaServer:
		if strings.TrimSpace(cfg.ServerURL) == "" {
			return nil, fmt.Errorf("backend %s requires a server url", BackendLlamaServer)
		}
		return NewLlamaServer(cfg.ServerURL, cfg.APIKey, cfg.Model, cfg.RequestTimeout, cfg.ConnectTimeout, log), nil
	case BackendGemini:
		rt, err := NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.ServerURL, log)
		if err != nil {
			return nil, err
		}
		return rt, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want one of %s)", cfg.Backend, strings.Join(Backends(), ", "))
	}
}

// modelNotFoundError is returned when a model id is neither in the registry
// nor an existing file.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

func resolveModelPath(model string, models []types.Model) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		if len(models) == 1 {
			return models[0].Path, nil
		}
		return "", modelNotFoundError{id: "(unspecified)"}
	}
	for _, m := range models {
		if m.ID == model || m.Name == model {
			return m.Path, nil
		}
	}
	if fi, err := os.Stat(model); err == nil && !fi.IsDir() {
		return model, nil
	}
	return "", modelNotFoundError{id: model}
}
