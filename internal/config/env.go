package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXTRACTD_"

// ApplyEnv overlays EXTRACTD_* variables read through lookup (os.LookupEnv in
// production). GEMINI_API_KEY and GOOGLE_API_KEY fill the API key when
// EXTRACTD_API_KEY is unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("ADDR", &c.Addr)
	str("MODELS_DIR", &c.ModelsDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("BACKEND", &c.Generation.Backend)
	str("MODEL", &c.Generation.Model)
	str("SERVER_URL", &c.Generation.ServerURL)
	str("API_KEY", &c.Generation.APIKey)
	str("TIMEOUT", &c.Generation.Timeout)
	str("CONNECT_TIMEOUT", &c.Generation.ConnectTimeout)
	str("PROFILE", &c.Profile.Name)
	if err := num("THREADS", &c.Generation.Threads); err != nil {
		return err
	}
	if err := num("CONTEXT_SIZE", &c.Generation.ContextSize); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err)
		}
		c.MaxBodyBytes = n
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		c.CORSEnabled = true
		c.CORSOrigins = SplitCSV(v)
	}
	if c.Generation.APIKey == "" {
		for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v, ok := lookup(k); ok && v != "" {
				c.Generation.APIKey = v
				break
			}
		}
	}
	return nil
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
