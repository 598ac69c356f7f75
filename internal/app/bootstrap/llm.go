package bootstrap

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wonpyo/jeju-chatpi/internal/config"
	"github.com/wonpyo/jeju-chatpi/internal/dialogue"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// BuildLLMClient assembles the refinement backend selected by
// LLM_PROVIDER and returns it with the model id the refiner should
// request. Missing credentials degrade to a nil client (drafts pass
// through unrefined) rather than failing startup; only an unknown
// provider or an AWS config failure is an error.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (dialogue.LLMClient, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.LLMProvider {
	case "", "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			logger.Warn("no OpenAI key configured; replies will use unrefined drafts")
			return nil, "", nil
		}
		primary, err := dialogue.NewOpenAILLMClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap: openai client: %w", err)
		}
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return primary, cfg.OpenAIModel, nil
		}
		fallback, err := dialogue.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini fallback unavailable, continuing with OpenAI only", "error", err)
			return primary, cfg.OpenAIModel, nil
		}
		logger.Info("llm fallback enabled", "primary", cfg.OpenAIModel, "fallback", cfg.GeminiModel)
		return dialogue.NewFallbackLLMClient(primary, fallback, logger.Logger), cfg.OpenAIModel, nil

	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			logger.Warn("no Gemini key configured; replies will use unrefined drafts")
			return nil, "", nil
		}
		client, err := dialogue.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		return client, cfg.GeminiModel, nil

	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			logger.Warn("no Bedrock model configured; replies will use unrefined drafts")
			return nil, "", nil
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client := dialogue.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		return client, cfg.BedrockModelID, nil

	default:
		return nil, "", fmt.Errorf("bootstrap: unknown llm provider %q", cfg.LLMProvider)
	}
}
