package ai

import (
	"context"
	"time"

	"github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/models"
	"go.uber.org/zap"
)

// CatalogMode selects where vendor model lists come from
type CatalogMode string

const (
	// CatalogLive queries the vendor and falls back to the static list on failure
	CatalogLive CatalogMode = "live"
	// CatalogStatic always answers with the curated list
	CatalogStatic CatalogMode = "static"
)

// staticModels is the curated catalog shipped for hosted providers
var staticModels = map[models.Provider][]models.ModelInfo{
	models.ProviderOpenAI: {
		{ID: "gpt-4o-mini", Name: "GPT-4o mini"},
		{ID: "gpt-4o", Name: "GPT-4o"},
		{ID: "gpt-4-turbo", Name: "GPT-4 Turbo"},
		{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
	},
	models.ProviderAnthropic: {
		{ID: "claude-3-5-haiku-latest", Name: "Claude 3.5 Haiku"},
		{ID: "claude-3-5-sonnet-latest", Name: "Claude 3.5 Sonnet"},
		{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus"},
		{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku"},
	},
	models.ProviderGroq: {
		{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B Instant"},
		{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B Versatile"},
		{ID: "mixtral-8x7b-32768", Name: "Mixtral 8x7B"},
		{ID: "gemma2-9b-it", Name: "Gemma 2 9B"},
	},
	models.ProviderGemini: {
		{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash"},
		{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro"},
		{ID: "gemini-1.0-pro", Name: "Gemini 1.0 Pro"},
	},
}

// StaticModels returns the curated list for provider (nil for the local provider)
func StaticModels(provider models.Provider) []models.ModelInfo {
	list, ok := staticModels[provider]
	if !ok {
		return nil
	}
	return append([]models.ModelInfo(nil), list...)
}

// Catalog answers model-listing requests on top of the registry
type Catalog struct {
	registry *Registry
	mode     CatalogMode
	cache    ModelCache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCatalog creates a catalog. cache may be nil to disable caching.
func NewCatalog(registry *Registry, mode CatalogMode, cache ModelCache, ttl time.Duration, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	if mode == "" {
		mode = CatalogLive
	}
	return &Catalog{registry: registry, mode: mode, cache: cache, ttl: ttl, logger: log}
}

// Mode reports the configured catalog mode
func (c *Catalog) Mode() CatalogMode {
	return c.mode
}

// ListModels returns the models for provider. The local provider is always
// queried live and its failures propagate. Hosted providers need a
// credential; live failures fall back to the static list.
func (c *Catalog) ListModels(ctx context.Context, provider models.Provider, settings models.ProviderSettings) ([]models.ModelInfo, error) {
	adapter, err := c.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	if provider.IsLocal() {
		return adapter.ListModels(ctx, settings)
	}

	if !settings.HasCredential() {
		return nil, missingCredential(provider)
	}

	if c.mode == CatalogStatic {
		return StaticModels(provider), nil
	}

	log := logger.WithContext(ctx, c.logger).With(zap.String("provider", string(provider)))
	key := ModelCacheKey(provider, settings)

	if c.cache != nil {
		list, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			log.Warn("model_cache_get_failed", zap.String("error", logger.SanitizeError(err)))
		} else if ok {
			return list, nil
		}
	}

	list, err := adapter.ListModels(ctx, settings)
	if err != nil || len(list) == 0 {
		fields := []zap.Field{zap.Int("live_count", len(list))}
		if err != nil {
			fields = append(fields, zap.String("error", logger.SanitizeError(err)))
		}
		log.Warn("model_catalog_fallback", fields...)
		return StaticModels(provider), nil
	}

	if c.cache != nil && c.ttl > 0 {
		if err := c.cache.Set(ctx, key, list, c.ttl); err != nil {
			log.Warn("model_cache_set_failed", zap.String("error", logger.SanitizeError(err)))
		}
	}
	return list, nil
}
