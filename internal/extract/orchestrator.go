package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"extractd/internal/generate"
)

// DefaultTimeout bounds one generation call when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Config wires an Orchestrator. Zero values select defaults: a disabled
// client, the default profile, DefaultTimeout and a no-op logger.
type Config struct {
	Client  generate.Client
	Profile generate.Profile
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Orchestrator runs the rule-based pass and falls back to the model only for
// fields the rules could not find. It holds no per-call state and is safe for
// concurrent use as long as its client is.
type Orchestrator struct {
	client  generate.Client
	profile generate.Profile
	timeout time.Duration
	log     zerolog.Logger
}

// New returns an Orchestrator using client with default settings.
func New(client generate.Client) *Orchestrator {
	return NewWithConfig(Config{Client: client, Logger: zerolog.Nop()})
}

// NewWithConfig returns an Orchestrator configured by cfg.
func NewWithConfig(cfg Config) *Orchestrator {
	o := &Orchestrator{
		client:  cfg.Client,
		profile: cfg.Profile,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
	}
	if o.client == nil {
		o.client = generate.Disabled{}
	}
	if o.profile.PromptTemplate == "" {
		o.profile, _ = generate.LookupProfile(generate.ProfileDefault)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	return o
}

// Profile returns the prompt profile in use.
func (o *Orchestrator) Profile() generate.Profile { return o.profile }

// Extract never fails: generation problems degrade to the rule-based partial
// result with Error set.
func (o *Orchestrator) Extract(ctx context.Context, text string) Result {
	log := o.logger(ctx)
	start := time.Now()

	ruled := RuleBased(text)
	if ruled.Complete() {
		log.Debug().Str("method", string(ruled.Method)).Dur("dur", time.Since(start)).Msg("extract: rules complete")
		return ruled
	}
	// Blank text has nothing for the model to find.
	if strings.TrimSpace(text) == "" {
		return ruled
	}

	prompt, err := o.profile.Render(generate.PromptData{
		Text:     text,
		TaxID:    ruled.TaxIDValue(),
		FullName: ruled.FullNameValue(),
	})
	if err != nil {
		return failed(ruled, fmt.Errorf("render prompt: %w", err))
	}

	log.Debug().Str("profile", o.profile.Name).Bool("have_tax_id", ruled.TaxID != nil).Bool("have_full_name", ruled.FullName != nil).Msg("extract: generating")
	out, err := o.generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Dur("dur", time.Since(start)).Msg("extract: generation failed")
		return failed(ruled, fmt.Errorf("generation failed: %w", err))
	}

	answer := o.profile.StripEcho(prompt, out)
	res := merge(ruled, parse(answer, text))
	res.RawModelOutput = optional(truncate(answer))
	log.Debug().
		Str("method", string(res.Method)).
		Bool("tax_id", res.TaxID != nil).
		Bool("full_name", res.FullName != nil).
		Dur("dur", time.Since(start)).
		Msg("extract: done")
	return res
}

// merge fills fields the rules missed. Rule-based values always win; the
// result is hybrid only when the model answer supplied a field.
func merge(ruled Result, p parsed) Result {
	res := ruled
	res.Method = MethodRuleBased
	if res.TaxID == nil && p.taxFrom >= 0 {
		res.TaxID = optional(p.taxID)
		if fromModel(p.taxFrom) {
			res.Method = MethodHybrid
		}
	}
	if res.FullName == nil && p.fullNameAt >= 0 {
		res.FullName = optional(p.fullName)
		if fromModel(p.fullNameAt) {
			res.Method = MethodHybrid
		}
	}
	return res
}

func failed(ruled Result, err error) Result {
	res := ruled
	res.Method = MethodRuleBased
	msg := err.Error()
	res.Error = &msg
	return res
}

// generate runs the client under the call timeout. A panicking client is
// reported as an error; a client that ignores cancellation is abandoned.
func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type reply struct {
		out string
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("client panic: %v", r)}
			}
		}()
		out, err := o.client.Generate(ctx, prompt, o.profile.Options)
		ch <- reply{out: out, err: err}
	}()

	select {
	case r := <-ch:
		return r.out, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// logger prefers a request-scoped logger carried by ctx.
func (o *Orchestrator) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &o.log
}
