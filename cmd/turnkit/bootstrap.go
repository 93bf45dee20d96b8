package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cyclone1070/turnkit/internal/catalog"
	"github.com/Cyclone1070/turnkit/internal/config"
	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/provider"
	"github.com/Cyclone1070/turnkit/internal/provider/anthropic"
	"github.com/Cyclone1070/turnkit/internal/provider/gemini"
	"github.com/Cyclone1070/turnkit/internal/provider/openaicompat"
	"github.com/Cyclone1070/turnkit/internal/runner"
	"github.com/Cyclone1070/turnkit/internal/session"
	"github.com/Cyclone1070/turnkit/internal/session/sqlite"
	"github.com/Cyclone1070/turnkit/internal/telemetry"
	"github.com/Cyclone1070/turnkit/internal/tool/clock"
	"github.com/Cyclone1070/turnkit/internal/tool/weather"
	"github.com/Cyclone1070/turnkit/internal/tool/websearch"
	"github.com/Cyclone1070/turnkit/internal/workflow"
)

// ErrMissingCredential is returned at startup when an agent's tools need a
// key that is not configured.
var ErrMissingCredential = errors.New("missing credential")

// environment is everything a chat or run command needs.
type environment struct {
	cfg       *config.Config
	telemetry *telemetry.Provider
	runner    *runner.Runner
	catalog   *catalog.Catalog
	store     session.Store
	closers   []func() error
}

func (e *environment) Close(ctx context.Context) {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			logging.Warn().With(logging.Err(err)).Msg("shutdown")
		}
	}
	if e.telemetry != nil {
		if err := e.telemetry.Shutdown(ctx); err != nil {
			logging.Warn().With(logging.Err(err)).Msg("flush traces")
		}
	}
}

// config reads .env, the dotfile and the environment, then applies flags.
func (a *App) config() (*config.Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if a.flags.maxTurns > 0 {
		cfg.Runner.MaxTurns = a.flags.maxTurns
	}
	if a.flags.db != "" {
		cfg.Session.Path = a.flags.db
	}
	if a.flags.trace {
		cfg.Tracing.Enabled = true
	}
	if a.flags.failClose {
		cfg.Guardrail.FailClosed = true
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	logging.SetLevel(cfg.Log.Level)
	return cfg, nil
}

// setup builds the runner, catalog and session store. events receives every
// runner event and must be drained by the caller.
func (a *App) setup(ctx context.Context, events chan<- workflow.Event) (*environment, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	env := &environment{cfg: cfg}

	tp, err := telemetry.Setup(cfg.Tracing, Version, a.stderr)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	env.telemetry = tp

	p, err := a.newProvider(ctx, cfg)
	if err != nil {
		env.Close(ctx)
		return nil, err
	}

	opts := []runner.Option{
		runner.WithTracer(tp.Tracer("github.com/Cyclone1070/turnkit/internal/runner")),
		runner.WithDefaultMaxTurns(cfg.Runner.MaxTurns),
		runner.WithDefaultSettings(defaultSettings(cfg.Provider)),
	}
	env.runner = runner.New(p, append(opts, runner.WithEvents(events))...)
	// classifier runs stay off the chat's status lines
	env.catalog = catalog.New(toolDeps(cfg, runner.New(p, opts...)))

	if cfg.Session.Path != "" {
		store, err := sqlite.Open(cfg.Session.Path)
		if err != nil {
			env.Close(ctx)
			return nil, err
		}
		env.store = store
		env.closers = append(env.closers, store.Close)
	} else {
		env.store = session.NewMemory()
	}
	return env, nil
}

// newProvider builds the configured model backend wrapped in a timeout,
// circuit breaker and retry.
func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	pc := cfg.Provider

	var p provider.Provider
	switch pc.Kind {
	case config.ProviderGemini:
		client, err := gemini.Dial(ctx, pc.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		p = gemini.New(client, pc.Model)
	case config.ProviderAnthropic:
		p = anthropic.New(anthropic.Dial(pc.APIKey), pc.Model)
	default:
		p = openaicompat.New(openaicompat.Dial(pc.APIKey, pc.BaseURL), pc.Model)
	}

	logging.Debug().With(logging.Reason(pc.Kind + "/" + pc.Model)).Msg("model backend ready")

	guarded := provider.NewGuard(p, provider.GuardConfig{
		Timeout:          time.Duration(pc.RequestTimeout) * time.Second,
		BreakerThreshold: pc.BreakerThreshold,
		BreakerCooldown:  time.Duration(pc.BreakerCooldown) * time.Second,
	})
	return provider.NewRetrying(guarded, provider.RetryConfig{
		MaxAttempts:  pc.RetryAttempts,
		InitialDelay: time.Duration(pc.RetryDelayMs) * time.Millisecond,
	}), nil
}

func defaultSettings(pc config.ProviderConfig) provider.ModelSettings {
	s := provider.ModelSettings{MaxTokens: pc.MaxTokens}
	if pc.Temperature > 0 {
		s.Temperature = provider.Float32(pc.Temperature)
	}
	if pc.TopP > 0 {
		s.TopP = provider.Float32(pc.TopP)
	}
	return s
}

func toolDeps(cfg *config.Config, checker *runner.Runner) catalog.Deps {
	timeout := time.Duration(cfg.Tools.HTTPTimeout) * time.Second
	return catalog.Deps{
		Checker:    checker,
		FailClosed: cfg.Guardrail.FailClosed,
		Weather:    weather.New(cfg.Tools.OpenWeatherAPIKey, weather.WithTimeout(timeout)).Tool(),
		Search: websearch.New(cfg.Tools.TavilyAPIKey,
			websearch.WithTimeout(timeout),
			websearch.WithMaxResults(cfg.Tools.SearchMaxResults),
		).Tool(),
		Clock: clock.New().Tool(),
	}
}

// requireCredentials fails when entry needs a key the config lacks.
func requireCredentials(entry catalog.Entry, cfg *config.Config) error {
	have := map[string]string{
		config.EnvOpenWeatherKey: cfg.Tools.OpenWeatherAPIKey,
		config.EnvTavilyKey:      cfg.Tools.TavilyAPIKey,
	}
	var missing []string
	for _, name := range entry.Requires {
		if have[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: agent %q needs %v", ErrMissingCredential, entry.Key, missing)
	}
	return nil
}
