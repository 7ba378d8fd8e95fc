package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/plume/internal/models"
)

// Model catalog modes
const (
	CatalogModeLive   = "live"
	CatalogModeStatic = "static"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	ServerPort       string
	FrontendURL      string
	EnableHSTS       bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
	RedisURL         string
	ModelCatalogMode string
	ModelCacheTTL    time.Duration
	LocalTimeout     time.Duration
	StatusTimeout    time.Duration
	VendorTimeout    time.Duration
	RequestTimeout   time.Duration
	HistoryEnabled   bool
	HistoryLimit     int

	Seed Seed
}

// Seed holds the provider values used to create the preferences row the
// first time it is read. Stored settings win afterwards.
type Seed struct {
	AIProvider     string
	OllamaURL      string
	OllamaModel    string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	GroqKey        string
	GroqModel      string
	GoogleKey      string
	GeminiModel    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", "plume.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		ModelCatalogMode: getEnv("MODEL_CATALOG_MODE", CatalogModeLive),
		ModelCacheTTL:    getEnvDuration("MODEL_CACHE_TTL", time.Hour),
		LocalTimeout:     getEnvDuration("LOCAL_TIMEOUT", 30*time.Second),
		StatusTimeout:    getEnvDuration("STATUS_TIMEOUT", 5*time.Second),
		VendorTimeout:    getEnvDuration("VENDOR_TIMEOUT", 60*time.Second),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 90*time.Second),
		HistoryEnabled:   getEnvBool("HISTORY_ENABLED", true),
		HistoryLimit:     getEnvInt("HISTORY_LIMIT", 10),
		Seed: Seed{
			AIProvider:     getEnv("AI_PROVIDER", string(models.ProviderOllama)),
			OllamaURL:      getEnv("OLLAMA_URL", models.DefaultOllamaURL),
			OllamaModel:    getEnv("OLLAMA_MODEL", models.DefaultOllamaModel),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", models.DefaultOpenAIModel),
			AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel: getEnv("ANTHROPIC_MODEL", models.DefaultAnthropicModel),
			GroqKey:        getEnv("GROQ_API_KEY", ""),
			GroqModel:      getEnv("GROQ_MODEL", models.DefaultGroqModel),
			GoogleKey:      getEnv("GOOGLE_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", models.DefaultGeminiModel),
		},
	}

	if _, err := models.ParseProvider(cfg.Seed.AIProvider); err != nil {
		return nil, fmt.Errorf("AI_PROVIDER: %w", err)
	}

	if cfg.ModelCatalogMode != CatalogModeLive && cfg.ModelCatalogMode != CatalogModeStatic {
		return nil, fmt.Errorf("MODEL_CATALOG_MODE must be %q or %q, got %q", CatalogModeLive, CatalogModeStatic, cfg.ModelCatalogMode)
	}

	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must not be negative")
	}

	return cfg, nil
}

// CORSOrigins splits FRONTEND_URL into individual origins
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.FrontendURL, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// SeedPreferences returns the defaults overlaid with the environment seeds
func (c *Config) SeedPreferences() models.Preferences {
	prefs := models.DefaultPreferences()
	prefs.ActiveProvider = models.Provider(c.Seed.AIProvider)
	prefs.Providers = map[models.Provider]models.ProviderSettings{
		models.ProviderOllama:    {Endpoint: strings.TrimRight(c.Seed.OllamaURL, "/"), Model: c.Seed.OllamaModel},
		models.ProviderOpenAI:    {Model: c.Seed.OpenAIModel, APIKey: c.Seed.OpenAIKey},
		models.ProviderAnthropic: {Model: c.Seed.AnthropicModel, APIKey: c.Seed.AnthropicKey},
		models.ProviderGroq:      {Model: c.Seed.GroqModel, APIKey: c.Seed.GroqKey},
		models.ProviderGemini:    {Model: c.Seed.GeminiModel, APIKey: c.Seed.GoogleKey},
	}
	return prefs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
