package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile, then environment.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Provider  ProviderConfig  `json:"provider"`
	Runner    RunnerConfig    `json:"runner"`
	Guardrail GuardrailConfig `json:"guardrail"`
	Log       LogConfig       `json:"log"`
	Tracing   TracingConfig   `json:"tracing"`
	Session   SessionConfig   `json:"session"`
	Tools     ToolsConfig     `json:"tools"`
}

// Provider kinds.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

type ProviderConfig struct {
	Kind    string `json:"kind"`     // Default: "openai" (OpenAI-compatible Gemini endpoint)
	Model   string `json:"model"`    // Default: "gemini-2.5-flash"
	BaseURL string `json:"base_url"` // Only used by the openai kind
	APIKey  string `json:"-"`        // Environment only

	Temperature float32 `json:"temperature"` // Default: 0 (backend default)
	TopP        float32 `json:"top_p"`       // Default: 0 (backend default)
	MaxTokens   int     `json:"max_tokens"`  // Default: 4096

	RetryAttempts  int `json:"retry_attempts"`  // Default: 3
	RetryDelayMs   int `json:"retry_delay_ms"`  // Default: 500
	RequestTimeout int `json:"request_timeout"` // Default: 120 (seconds)

	BreakerThreshold int `json:"breaker_threshold"` // Default: 5 (0 disables)
	BreakerCooldown  int `json:"breaker_cooldown"`  // Default: 30 (seconds)
}

type RunnerConfig struct {
	MaxTurns int `json:"max_turns"` // Default: 10
}

type GuardrailConfig struct {
	// FailClosed blocks when a classifier verdict cannot be parsed.
	FailClosed bool `json:"fail_closed"` // Default: false
}

type LogConfig struct {
	Level  string `json:"level"`  // Default: "warn"
	Format string `json:"format"` // Default: "console"
}

type TracingConfig struct {
	Enabled bool `json:"enabled"` // Default: false
	Pretty  bool `json:"pretty"`  // Default: true
}

type SessionConfig struct {
	// Path of the SQLite history database. Empty keeps history in memory.
	Path string `json:"path"`
}

type ToolsConfig struct {
	OpenWeatherAPIKey string `json:"-"`
	TavilyAPIKey      string `json:"-"`

	HTTPTimeout      int `json:"http_timeout"`       // Default: 15 (seconds)
	SearchMaxResults int `json:"search_max_results"` // Default: 5
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Kind:             ProviderOpenAI,
			Model:            DefaultModel,
			BaseURL:          DefaultBaseURL,
			MaxTokens:        4096,
			RetryAttempts:    3,
			RetryDelayMs:     500,
			RequestTimeout:   120,
			BreakerThreshold: 5,
			BreakerCooldown:  30,
		},
		Runner: RunnerConfig{
			MaxTurns: 10,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Tracing: TracingConfig{
			Pretty: true,
		},
		Tools: ToolsConfig{
			HTTPTimeout:      15,
			SearchMaxResults: 5,
		},
	}
}
