//go:build !llama

package generate

// This file provides a no-CGO stub for the in-process runtime. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds CGO-free.

import (
	"context"

	"github.com/rs/zerolog"
)

const llamaBuilt = false

// Llama is a stub that refuses to load models without the 'llama' build tag.
type Llama struct{}

// NewLlama fails fast: llama runtime not available in this build.
func NewLlama(modelPath string, ctxSize, threads int, log zerolog.Logger) (*Llama, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (l *Llama) Name() string { return BackendLlama }

func (l *Llama) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return "", ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (l *Llama) Close() error { return nil }
