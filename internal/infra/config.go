package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	DatabaseURL    string
	StoragePath    string
	StorageBaseURL string

	TextProvider  string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIOrg     string

	ImageModels    []string
	ValidatorModel string

	TextMaxAttempts int
	TextRetryDelay  time.Duration
	ImageMaxRetries int
	ImagePacing     time.Duration
	RequestTimeout  time.Duration

	JobPollInterval time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Missing required values fail at startup; every
// pipeline knob has a documented default.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),

		TextProvider:  strings.ToLower(getEnv("TEXT_PROVIDER", "gemini")),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:     os.Getenv("OPENAI_ORG"),

		ImageModels:    splitList(getEnv("IMAGE_MODELS", "gemini-2.5-flash-image,gemini-2.0-flash-exp-image")),
		ValidatorModel: getEnv("VALIDATOR_MODEL", "gemini-2.5-flash"),

		TextMaxAttempts: getEnvInt("TEXT_MAX_ATTEMPTS", 3),
		TextRetryDelay:  time.Millisecond * time.Duration(getEnvInt("TEXT_RETRY_DELAY_MS", 2000)),
		ImageMaxRetries: getEnvInt("IMAGE_MAX_RETRIES", 3),
		ImagePacing:     time.Millisecond * time.Duration(getEnvInt("IMAGE_PACING_MS", 1500)),
		RequestTimeout:  time.Second * time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)),

		JobPollInterval: time.Second * time.Duration(getEnvInt("JOB_POLL_INTERVAL_SECONDS", 2)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.TextProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when TEXT_PROVIDER=openai")
		}
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for image generation")
		}
	default:
		return nil, fmt.Errorf("unsupported TEXT_PROVIDER %q", cfg.TextProvider)
	}

	if len(cfg.ImageModels) == 0 {
		return nil, fmt.Errorf("IMAGE_MODELS must list at least one model")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
