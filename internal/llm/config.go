package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by Config.Provider. An empty provider disables
// LLM features.
const (
	ProviderNone      = ""
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config selects and configures the LLM provider.
type Config struct {
	Provider string `validate:"omitempty,oneof=anthropic openai gemini mock"`

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig

	// Timeout bounds a single request.
	Timeout time.Duration `validate:"gte=0"`
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig also serves OpenAI-compatible gateways through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// DefaultConfig returns a disabled Config with default models.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Timeout:   15 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ProviderNone
}

// ConfigFromEnv reads QUIZPLAY_LLM_PROVIDER and the per-provider
// QUIZPLAY_<PROVIDER>_API_KEY / _MODEL / _BASE_URL variables. When no
// provider is named it falls back to DiscoverConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Provider = os.Getenv("QUIZPLAY_LLM_PROVIDER")

	setIf(&cfg.Anthropic.APIKey, "QUIZPLAY_ANTHROPIC_API_KEY")
	setIf(&cfg.Anthropic.Model, "QUIZPLAY_ANTHROPIC_MODEL")
	setIf(&cfg.Anthropic.BaseURL, "QUIZPLAY_ANTHROPIC_BASE_URL")
	setIf(&cfg.OpenAI.APIKey, "QUIZPLAY_OPENAI_API_KEY")
	setIf(&cfg.OpenAI.Model, "QUIZPLAY_OPENAI_MODEL")
	setIf(&cfg.OpenAI.BaseURL, "QUIZPLAY_OPENAI_BASE_URL")
	setIf(&cfg.Gemini.APIKey, "QUIZPLAY_GEMINI_API_KEY")
	setIf(&cfg.Gemini.Model, "QUIZPLAY_GEMINI_MODEL")

	if v := os.Getenv("QUIZPLAY_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	if cfg.Provider == ProviderNone {
		if found, ok := DiscoverConfig(); ok {
			found.Timeout = cfg.Timeout
			return found
		}
	}
	return cfg
}

func setIf(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes the vendors' standard API key variables in the
// order Gemini, OpenAI, Anthropic and returns a Config for the first one
// set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderNone, ProviderMock:
		return nil
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "QUIZPLAY_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "QUIZPLAY_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "QUIZPLAY_GEMINI_API_KEY"
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
