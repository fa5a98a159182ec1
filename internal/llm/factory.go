package llm

import (
	"fmt"

	"resto-chatbot/internal/common/config"
	"resto-chatbot/internal/common/logger"
)

// New builds the instrumented client for the configured provider.
func New(cfg config.LLMConfig, log logger.Logger) (Client, error) {
	timeout := config.GetDuration(cfg.Timeout)

	var (
		c   Client
		err error
	)
	switch cfg.Provider {
	case config.ProviderGemini, "":
		c, err = NewGeminiClient(GeminiConfig{
			BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Model: cfg.Model,
			Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens, Timeout: timeout,
		})
	case config.ProviderOpenAI:
		c, err = NewOpenAIClient(OpenAIConfig{
			BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Model: cfg.Model,
			Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens, Timeout: timeout,
		})
	case config.ProviderAnthropic:
		c, err = NewAnthropicClient(AnthropicConfig{
			BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Model: cfg.Model,
			Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens, Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c, log), nil
}
