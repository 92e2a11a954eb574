package config

import (
	"fmt"
	"strings"
	"time"

	"extractd/internal/generate"
)

// Config holds runtime parameters for the CLI and the HTTP service.
// Default fills every field; Load, ApplyEnv and CLI flags overlay it in that order.
type Config struct {
	Addr         string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir    string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	LogLevel     string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled  bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	Generation Generation `json:"generation" yaml:"generation" toml:"generation"`
	Profile    Profile    `json:"profile" yaml:"profile" toml:"profile"`
}

// Generation selects the text-generation backend.
type Generation struct {
	Backend   string `json:"backend" yaml:"backend" toml:"backend"`
	Model     string `json:"model" yaml:"model" toml:"model"`
	ServerURL string `json:"server_url" yaml:"server_url" toml:"server_url"`
	APIKey    string `json:"api_key" yaml:"api_key" toml:"api_key"`
	// Timeout bounds one generation call, e.g. "60s".
	Timeout        string `json:"timeout" yaml:"timeout" toml:"timeout"`
	ConnectTimeout string `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`
	Threads        int    `json:"threads" yaml:"threads" toml:"threads"`
	ContextSize    int    `json:"context_size" yaml:"context_size" toml:"context_size"`
}

// Profile names a built-in generation profile and optionally overrides parts of it.
type Profile struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	Model          string   `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	PromptTemplate string   `json:"prompt_template,omitempty" yaml:"prompt_template,omitempty" toml:"prompt_template,omitempty"`
	ResponseMarker string   `json:"response_marker,omitempty" yaml:"response_marker,omitempty" toml:"response_marker,omitempty"`
	MaxNewTokens   *int     `json:"max_new_tokens,omitempty" yaml:"max_new_tokens,omitempty" toml:"max_new_tokens,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
	Deterministic  *bool    `json:"deterministic,omitempty" yaml:"deterministic,omitempty" toml:"deterministic,omitempty"`
}

// Default returns a configuration with every field set.
func Default() Config {
	return Config{
		Addr:         ":8080",
		ModelsDir:    "~/models/llm",
		LogLevel:     "info",
		LogFormat:    "auto",
		MaxBodyBytes: 1 << 20,
		Generation: Generation{
			Backend:        generate.BackendNone,
			Timeout:        "60s",
			ConnectTimeout: "5s",
			Threads:        4,
			ContextSize:    2048,
		},
		Profile: Profile{Name: generate.ProfileDefault},
	}
}

// Validate checks backend and profile names, durations and decoding options.
func (c Config) Validate() error {
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be non-negative")
	}
	switch c.LogFormat {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("log_format %q: want auto, console or json", c.LogFormat)
	}
	if !known(generate.Backends(), c.Generation.Backend) && c.Generation.Backend != "" {
		return fmt.Errorf("generation.backend %q: want one of %s", c.Generation.Backend, strings.Join(generate.Backends(), ", "))
	}
	if _, err := c.Generation.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Generation.ConnectTimeoutDuration(); err != nil {
		return err
	}
	if c.Generation.Threads < 0 || c.Generation.ContextSize < 0 {
		return fmt.Errorf("generation.threads and generation.context_size must be non-negative")
	}
	if _, err := c.Profile.Resolve(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout; empty means zero (caller default).
func (g Generation) TimeoutDuration() (time.Duration, error) {
	return parseDuration("generation.timeout", g.Timeout)
}

// ConnectTimeoutDuration parses ConnectTimeout; empty means zero.
func (g Generation) ConnectTimeoutDuration() (time.Duration, error) {
	return parseDuration("generation.connect_timeout", g.ConnectTimeout)
}

// Runtime converts the section into a generate.Config. Call Validate first.
func (g Generation) Runtime() generate.Config {
	timeout, _ := g.TimeoutDuration()
	connect, _ := g.ConnectTimeoutDuration()
	return generate.Config{
		Backend:        g.Backend,
		Model:          g.Model,
		ServerURL:      g.ServerURL,
		APIKey:         g.APIKey,
		RequestTimeout: timeout,
		ConnectTimeout: connect,
		ContextSize:    g.ContextSize,
		Threads:        g.Threads,
	}
}

// Resolve looks up the named built-in profile and applies the overrides.
func (p Profile) Resolve() (generate.Profile, error) {
	name := p.Name
	if name == "" {
		name = generate.ProfileDefault
	}
	out, ok := generate.LookupProfile(name)
	if !ok {
		return generate.Profile{}, fmt.Errorf("profile %q: want one of %s", name, strings.Join(generate.ProfileNames(), ", "))
	}
	if p.Model != "" {
		out.Model = p.Model
	}
	if p.PromptTemplate != "" {
		out.PromptTemplate = p.PromptTemplate
	}
	if p.ResponseMarker != "" {
		out.ResponseMarker = p.ResponseMarker
	}
	if p.MaxNewTokens != nil {
		out.Options.MaxNewTokens = *p.MaxNewTokens
	}
	if p.Temperature != nil {
		out.Options.Temperature = *p.Temperature
	}
	if p.Deterministic != nil {
		out.Options.Deterministic = *p.Deterministic
	}
	if err := out.Validate(); err != nil {
		return generate.Profile{}, err
	}
	return out, nil
}

func parseDuration(field, v string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must be non-negative", field)
	}
	return d, nil
}

func known(names []string, v string) bool {
	for _, n := range names {
		if n == v {
			return true
		}
	}
	return false
}
