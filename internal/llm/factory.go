package llm

import (
	"fmt"
	"time"
)

// Providers accepted by NewTextGenerator.
const (
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// ProviderConfig selects and configures a generator.
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewTextGenerator returns the configured generator, or (nil, nil) when
// the assistant is disabled.
func NewTextGenerator(cfg ProviderConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		client, err := NewAnthropicClient(AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
