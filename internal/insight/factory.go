package insight

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"ats-go/internal/ats"
	"ats-go/internal/config"
)

// Default models per provider, used when the config leaves Model empty.
const (
	DefaultGoogleAIModel = "gemini-2.5-flash"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOllamaModel   = "llama3.1"

	defaultTemperature = 0.3
)

// NewGeneratorFromConfig creates an InsightGenerator for the configured
// provider. Provider "none" returns a nil generator.
func NewGeneratorFromConfig(ctx context.Context, cfg config.InsightsConfig) (ats.InsightGenerator, error) {
	if cfg.Provider == "" || cfg.Provider == "none" {
		return nil, nil
	}
	model, err := newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewLLMGenerator(model, defaultTemperature), nil
}

func newModel(ctx context.Context, cfg config.InsightsConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "googleai":
		apiKey, err := apiKey(cfg, "GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(orDefault(cfg.Model, DefaultGoogleAIModel)),
		)
		if err != nil {
			return nil, fmt.Errorf("creating googleai client: %w", err)
		}
		return llm, nil
	case "openai":
		apiKey, err := apiKey(cfg, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(orDefault(cfg.Model, DefaultOpenAIModel)),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return llm, nil
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(orDefault(cfg.Model, DefaultOllamaModel))}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown insights provider: %q", cfg.Provider)
	}
}

// apiKey reads the provider key from the environment variable named in the
// config, falling back to the provider's conventional variable.
func apiKey(cfg config.InsightsConfig, fallbackEnv string) (string, error) {
	env := orDefault(cfg.APIKeyEnv, fallbackEnv)
	key := os.Getenv(env)
	if key == "" {
		return "", fmt.Errorf("%s provider requires an API key in $%s", cfg.Provider, env)
	}
	return key, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
