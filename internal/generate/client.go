package generate

import (
	"context"
	"math"
	"strconv"
)

// MaxNewTokensLimit is the largest accepted MaxNewTokens; runtimes pass the
// value on as a 32-bit integer.
const MaxNewTokensLimit = math.MaxInt32

// Client is the narrow contract the extraction core consumes: prompt in,
// completion text out. Implementations may be slow, may ignore the requested
// answer format and may echo the prompt back.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Runtime is a Client that owns resources (model weights, transports).
type Runtime interface {
	Client
	// Name identifies the backend for logs and status output.
	Name() string
	// Close releases any resources associated with the runtime.
	Close() error
}

// Checker is implemented by runtimes that can probe their backend.
type Checker interface {
	Check(ctx context.Context) error
}

// Options captures decoding parameters passed to a runtime.
type Options struct {
	// MaxNewTokens bounds the completion length. Must be positive.
	MaxNewTokens int `json:"max_new_tokens" yaml:"max_new_tokens" toml:"max_new_tokens"`
	// Temperature is the sampling temperature; 0 means fully deterministic decoding.
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	// Deterministic selects greedy decoding over sampling.
	Deterministic bool `json:"deterministic" yaml:"deterministic" toml:"deterministic"`
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.MaxNewTokens <= 0 {
		return invalidOptionsError{msg: "max_new_tokens must be positive, got " + strconv.Itoa(o.MaxNewTokens)}
	}
	if o.MaxNewTokens > MaxNewTokensLimit {
		return invalidOptionsError{msg: "max_new_tokens must not exceed " + strconv.Itoa(MaxNewTokensLimit) + ", got " + strconv.Itoa(o.MaxNewTokens)}
	}
	if o.Temperature < 0 {
		return invalidOptionsError{msg: "temperature must be non-negative, got " + strconv.FormatFloat(o.Temperature, 'g', -1, 64)}
	}
	return nil
}

// Greedy reports whether decoding must pick the most likely token every step.
func (o Options) Greedy() bool { return o.Deterministic || o.Temperature == 0 }

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Generate calls f.
func (f ClientFunc) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

// Disabled is the runtime used when no backend is configured. Every call fails
// with a dependency-unavailable error so callers fall back to rule-based results.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return "", ErrDependencyUnavailable("generation disabled (backend none)")
}

func (Disabled) Name() string { return BackendNone }

func (Disabled) Close() error { return nil }
