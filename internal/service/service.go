// Package service assembles the extraction pipeline from configuration: model
// registry, generation runtime, prompt profile and orchestrator. It owns the
// runtime and releases it in Close.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"extractd/internal/config"
	"extractd/internal/extract"
	"extractd/internal/generate"
	"extractd/internal/registry"
	"extractd/pkg/types"
)

// probeTimeout bounds a backend health probe.
const probeTimeout = 2 * time.Second

// Service serves extraction requests for the CLI and the HTTP layer.
type Service struct {
	backend string
	profile generate.Profile
	models  []types.Model
	runtime generate.Runtime
	orch    *extract.Orchestrator
	log     zerolog.Logger
	started time.Time

	mu        sync.Mutex
	probeErr  error
	probed    bool
	closeOnce sync.Once
}

// New builds the configured runtime. The models directory is optional unless
// the in-process backend needs it to resolve a model id.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	profile, err := cfg.Profile.Resolve()
	if err != nil {
		return nil, err
	}

	models, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		if cfg.Generation.Backend == generate.BackendLlama {
			return nil, fmt.Errorf("load models: %w", err)
		}
		log.Debug().Err(err).Str("dir", cfg.ModelsDir).Msg("models dir unavailable")
		models = nil
	}

	rc := cfg.Generation.Runtime()
	if rc.Model == "" {
		rc.Model = profile.Model
	}
	rt, err := generate.New(ctx, rc, models, log)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	timeout, _ := cfg.Generation.TimeoutDuration()
	return NewWithRuntime(rt, profile, timeout, models, log), nil
}

// NewWithRuntime wires an existing runtime; used by New and by tests.
func NewWithRuntime(rt generate.Runtime, profile generate.Profile, timeout time.Duration, models []types.Model, log zerolog.Logger) *Service {
	if rt == nil {
		rt = generate.Disabled{}
	}
	orch := extract.NewWithConfig(extract.Config{
		Client:  rt,
		Profile: profile,
		Timeout: timeout,
		Logger:  log,
	})
	return &Service{
		backend: rt.Name(),
		profile: orch.Profile(),
		models:  models,
		runtime: rt,
		orch:    orch,
		log:     log,
		started: time.Now(),
	}
}

// Extract runs one extraction. It never fails; see extract.Result.Error.
func (s *Service) Extract(ctx context.Context, text string) extract.Result {
	return s.orch.Extract(ctx, text)
}

// ListModels returns a copy of the discovered models.
func (s *Service) ListModels() []types.Model {
	return append([]types.Model(nil), s.models...)
}

// Backend names the runtime in use.
func (s *Service) Backend() string { return s.backend }

// Profile returns the prompt profile in use.
func (s *Service) Profile() generate.Profile { return s.profile }

// Probe checks the backend when the runtime supports it and records the outcome.
func (s *Service) Probe(ctx context.Context) error {
	var err error
	if c, ok := s.runtime.(generate.Checker); ok {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err = c.Check(ctx)
		cancel()
	}
	s.mu.Lock()
	s.probeErr, s.probed = err, true
	s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Str("backend", s.backend).Msg("backend probe failed")
	}
	return err
}

// Ready reports whether the backend answered its probe. Rule-based extraction
// keeps working either way; readiness only concerns the model path.
func (s *Service) Ready() bool {
	return s.Probe(context.Background()) == nil
}

// Status summarizes the service for GET /status. It reuses the last probe.
func (s *Service) Status() types.StatusResponse {
	s.mu.Lock()
	probed, err := s.probed, s.probeErr
	s.mu.Unlock()
	if !probed {
		err = s.Probe(context.Background())
	}
	st := types.StatusResponse{
		Backend:       s.backend,
		Profile:       s.profile.Name,
		BackendReady:  err == nil,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if err != nil {
		st.BackendError = err.Error()
	}
	return st
}

// Close releases the runtime. It is safe to call more than once.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.runtime.Close()
	})
	return err
}
