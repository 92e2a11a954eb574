// Command extractd extracts a taxpayer id (ИНН) and a full name (ФИО) from
// Russian free text, from the command line or over HTTP.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"extractd/internal/common/fsutil"
	"extractd/internal/config"
)

// rootOptions holds the persistent flags. Only flags set on the command line
// override the loaded configuration.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	modelsDir  string
	backend    string
	model      string
	serverURL  string
	profile    string
	timeout    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "extractd",
		Short: "Extract ИНН and ФИО from Russian free text",
		Long: `extractd finds a taxpayer id (ИНН, 10 or 12 digits) and a person's full
name (ФИО) in free text. Deterministic rules run first; a language model is
asked only for the fields the rules did not find.

Configuration is read from --config (or the first of extractd.{yaml,toml,json}
and ~/.config/extractd/config.*), then EXTRACTD_* environment variables, then
flags.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (.yaml, .json or .toml)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&o.logFormat, "log-format", "", "log format: auto, console or json")
	pf.StringVar(&o.modelsDir, "models-dir", "", "directory to scan for *.gguf model files")
	pf.StringVar(&o.backend, "backend", "", "generation backend: none, llama, llama-server, gemini")
	pf.StringVar(&o.model, "model", "", "model id, path or hosted model name")
	pf.StringVar(&o.serverURL, "server-url", "", "llama.cpp server base URL")
	pf.StringVar(&o.profile, "profile", "", "generation profile name")
	pf.StringVar(&o.timeout, "timeout", "", "generation timeout, e.g. 60s")

	root.AddCommand(
		newExtractCmd(o),
		newBatchCmd(o),
		newServeCmd(o),
		newModelsCmd(o),
		newProfilesCmd(),
	)
	return root
}

// load resolves the configuration and builds the logger for cmd.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func (o *rootOptions) config(cmd *cobra.Command) (config.Config, error) {
	path := o.configPath
	if path == "" {
		path = fsutil.FindFirst(fsutil.DefaultConfigCandidates)
	} else if p, err := fsutil.ExpandHome(path); err == nil {
		path = p
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	set("log-level", &cfg.LogLevel, o.logLevel)
	set("log-format", &cfg.LogFormat, o.logFormat)
	set("models-dir", &cfg.ModelsDir, o.modelsDir)
	set("backend", &cfg.Generation.Backend, o.backend)
	set("model", &cfg.Generation.Model, o.model)
	set("server-url", &cfg.Generation.ServerURL, o.serverURL)
	set("profile", &cfg.Profile.Name, o.profile)
	set("timeout", &cfg.Generation.Timeout, o.timeout)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger writes to w: a console writer on terminals (or when asked), JSON
// otherwise.
func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(strings.ToLower(level)); err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
		}
	}
	out := w
	switch format {
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	case "json":
	case "", "auto":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
		}
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: want auto, console or json", format)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
