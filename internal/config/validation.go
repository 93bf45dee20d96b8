package config

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by RequireCredentials when the model key is unset.
var ErrMissingAPIKey = errors.New("model API key is not set")

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Provider.Kind {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("provider.kind %q must be one of openai, gemini, anthropic", c.Provider.Kind))
	}
	if c.Provider.Model == "" {
		errs = append(errs, "provider.model must not be empty")
	}
	if c.Provider.Kind == ProviderOpenAI && c.Provider.BaseURL == "" {
		errs = append(errs, "provider.base_url must not be empty for the openai kind")
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, "provider.temperature must be within [0, 2]")
	}
	if c.Provider.TopP < 0 || c.Provider.TopP > 1 {
		errs = append(errs, "provider.top_p must be within [0, 1]")
	}
	if c.Provider.MaxTokens < 1 {
		errs = append(errs, "provider.max_tokens must be >= 1")
	}
	if c.Provider.RetryAttempts < 1 {
		errs = append(errs, "provider.retry_attempts must be >= 1")
	}
	if c.Provider.RetryDelayMs < 0 {
		errs = append(errs, "provider.retry_delay_ms must be >= 0")
	}
	if c.Provider.RequestTimeout < 1 {
		errs = append(errs, "provider.request_timeout must be >= 1")
	}

	if c.Provider.BreakerThreshold < 0 {
		errs = append(errs, "provider.breaker_threshold must be >= 0")
	}
	if c.Provider.BreakerThreshold > 0 && c.Provider.BreakerCooldown < 1 {
		errs = append(errs, "provider.breaker_cooldown must be >= 1 when the breaker is enabled")
	}

	if c.Runner.MaxTurns < 1 {
		errs = append(errs, "runner.max_turns must be >= 1")
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not a known level", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, "log.format must be json or console")
	}

	if c.Tools.HTTPTimeout < 1 {
		errs = append(errs, "tools.http_timeout must be >= 1")
	}
	if c.Tools.SearchMaxResults < 1 {
		errs = append(errs, "tools.search_max_results must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

// RequireCredentials reports a missing model key. It is checked at startup,
// never per turn.
func (c *Config) RequireCredentials() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("%w for provider %q", ErrMissingAPIKey, c.Provider.Kind)
	}
	return nil
}
