//go:build llama

package generate

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
	"github.com/rs/zerolog"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// Llama owns a model loaded in-process through go-llama.cpp. Weights are
// loaded once in NewLlama and freed by Close; calls are serialized.
type Llama struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
	log     zerolog.Logger
}

// NewLlama loads the GGUF model at modelPath.
func NewLlama(modelPath string, ctxSize, threads int, log zerolog.Logger) (*Llama, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{}
	if ctxSize > 0 {
		mo = append(mo, llama.SetContext(ctxSize))
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("runtime", BackendLlama).Str("model", modelPath).Msg("model loaded")
	return &Llama{model: m, threads: threads, log: log}, nil
}

func (l *Llama) Name() string { return BackendLlama }

func (l *Llama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model == nil {
		return "", errors.New("llama model not initialized")
	}
	// Stop generation as soon as the context is done.
	l.model.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := l.model.Predict(prompt, predictOptions(opts, l.threads)...)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (l *Llama) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model != nil {
		l.model.Free()
		l.model = nil
	}
	return nil
}

// predictOptions converts decoding options into go-llama.cpp options.
func predictOptions(opts Options, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, opts.MaxNewTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTemperature(float32(opts.Temperature)),
	}
	if opts.Greedy() {
		po = append(po, llama.SetTemperature(0), llama.SetTopK(1))
	}
	return po
}
