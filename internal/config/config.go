package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	LLMProvider    string
	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIKey   string
	GeminiModel    string
	BedrockModelID string
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	FastMode     bool
	GuardEnabled bool

	CallbackEnabled      bool
	CallbackWindow       time.Duration
	CallbackSafetyMargin time.Duration
	CallbackMaxLLMBudget time.Duration

	SessionTTL     time.Duration
	SessionBackend string
	RedisAddr      string
	RedisPassword  string

	UseMemoryQueue   bool
	CallbackQueueURL string
	WorkerCount      int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	DataDir string
	DocsDir string

	SearchEnabled     bool
	SearchTimeout     time.Duration
	NaverClientID     string
	NaverClientSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai"))),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		LLMMaxTokens:   getEnvAsInt("MAX_TOKENS", 700),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 15*time.Second),

		FastMode:     getEnvAsBool("FAST_MODE", false),
		GuardEnabled: getEnvAsBool("GUARD_ENABLED", true),

		CallbackEnabled:      getEnvAsBool("CALLBACK_ENABLED", true),
		CallbackWindow:       getEnvAsDuration("CALLBACK_WINDOW", time.Minute),
		CallbackSafetyMargin: getEnvAsDuration("CALLBACK_SAFETY_MARGIN", 5*time.Second),
		CallbackMaxLLMBudget: getEnvAsDuration("CALLBACK_MAX_LLM_BUDGET", 45*time.Second),

		SessionTTL:     getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		SessionBackend: strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "memory"))),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		UseMemoryQueue:   getEnvAsBool("USE_MEMORY_QUEUE", true),
		CallbackQueueURL: getEnv("CALLBACK_QUEUE_URL", ""),
		WorkerCount:      getEnvAsInt("WORKER_COUNT", 2),

		AWSRegion:           getEnv("AWS_REGION", "ap-northeast-2"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		DataDir: getEnv("DATA_DIR", "./data"),
		DocsDir: getEnv("DOCS_DIR", "./docs"),

		SearchEnabled:     getEnvAsBool("SEARCH_ENABLED", true),
		SearchTimeout:     getEnvAsDuration("SEARCH_TIMEOUT", 4*time.Second),
		NaverClientID:     strings.TrimSpace(getEnv("NAVER_CLIENT_ID", "")),
		NaverClientSecret: strings.TrimSpace(getEnv("NAVER_CLIENT_SECRET", "")),
	}
}

// Redacted reports the effective configuration without exposing secrets.
// Credential fields collapse to presence booleans.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"env":             c.Env,
		"llm_provider":    c.LLMProvider,
		"model":           c.OpenAIModel,
		"has_openai_key":  c.OpenAIAPIKey != "",
		"has_gemini_key":  c.GeminiAPIKey != "",
		"max_tokens":      c.LLMMaxTokens,
		"llm_timeout":     c.LLMTimeout.String(),
		"fast_mode":       c.FastMode,
		"guard_enabled":   c.GuardEnabled,
		"callback":        c.CallbackEnabled,
		"callback_window": c.CallbackWindow.String(),
		"session_ttl":     c.SessionTTL.String(),
		"session_backend": c.SessionBackend,
		"queue":           queueLabel(c.UseMemoryQueue),
		"data_dir":        c.DataDir,
		"docs_dir":        c.DocsDir,
		"search_enabled":  c.SearchEnabled,
		"has_naver_keys":  c.NaverClientID != "" && c.NaverClientSecret != "",
	}
}

func queueLabel(memory bool) string {
	if memory {
		return "memory"
	}
	return "sqs"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
