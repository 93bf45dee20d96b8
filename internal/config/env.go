package config

import "strings"

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	// DefaultModel is used when neither the dotfile nor GEMINI_MODEL_NAME set one.
	DefaultModel = "gemini-2.5-flash"
)

// Environment variable names read by ApplyEnv.
const (
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvGeminiBaseURL   = "GEMINI_BASE_URL"
	EnvGeminiModel     = "GEMINI_MODEL_NAME"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenWeatherKey  = "OPENWEATHER_API_KEY"
	EnvTavilyKey       = "TAVILY_API_KEY"
	EnvLogLevel        = "TURNKIT_LOG_LEVEL"
)

// ApplyEnv overlays environment values on the config. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	switch c.Provider.Kind {
	case ProviderAnthropic:
		if v, ok := get(EnvAnthropicAPIKey); ok {
			c.Provider.APIKey = v
		}
	default:
		if v, ok := get(EnvGeminiAPIKey); ok {
			c.Provider.APIKey = v
		}
		if v, ok := get(EnvGeminiModel); ok {
			c.Provider.Model = v
		}
	}
	if v, ok := get(EnvGeminiBaseURL); ok {
		c.Provider.BaseURL = v
	}
	if v, ok := get(EnvOpenWeatherKey); ok {
		c.Tools.OpenWeatherAPIKey = v
	}
	if v, ok := get(EnvTavilyKey); ok {
		c.Tools.TavilyAPIKey = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(v)
	}
}
