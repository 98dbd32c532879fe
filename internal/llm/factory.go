package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/verifact/internal/model"
)

// NewProvider creates the backend named in config
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic)", config.Provider)
	}
}

// ConfigFromModel converts the resolved application config into provider config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Timeout:       cfg.LLM.Timeout,
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   cfg.LLM.Temperature,
		MaxIterations: cfg.LLM.MaxIterations,
		HTTPProxy:     cfg.HTTP.HTTPProxy,
		HTTPSProxy:    cfg.HTTP.HTTPSProxy,
		NoProxy:       cfg.HTTP.NoProxy,
	}
}

// APIKeyEnv returns the environment variable holding the credential for a provider
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
