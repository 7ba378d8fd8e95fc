// Package app wires configuration, storage, providers and the assistant
// service together for the server and the configure CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/plume/internal/config"
	"github.com/benvon/plume/internal/database"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/services/assistant"
	"go.uber.org/zap"
)

// App holds the long-lived dependencies of a process
type App struct {
	Config     *config.Config
	DB         *database.DB
	Prefs      *database.PreferencesRepository
	History    *database.HistoryRepository
	Registry   *ai.Registry
	Catalog    *ai.Catalog
	Service    *assistant.Service
	RedisCache *ai.RedisModelCache
}

// New opens the database, connects the optional Redis model cache and
// builds the assistant service. A Redis URL that cannot be reached falls
// back to the in-process cache.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, debugMode bool) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("connected_to_database", zap.String("dialect", string(db.Dialect())))

	a := &App{
		Config:  cfg,
		DB:      db,
		Prefs:   database.NewPreferencesRepository(db, cfg.SeedPreferences()),
		History: database.NewHistoryRepository(db),
		Registry: ai.NewDefaultRegistry(ai.Options{
			LocalTimeout:  cfg.LocalTimeout,
			StatusTimeout: cfg.StatusTimeout,
			VendorTimeout: cfg.VendorTimeout,
			Logger:        log,
			DebugMode:     debugMode,
		}),
	}

	var cache ai.ModelCache = ai.NewMemoryModelCache(ai.DefaultMemoryCacheSize, cfg.ModelCacheTTL)
	if cfg.RedisURL != "" {
		redisCache, err := ai.NewRedisModelCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis_unavailable_using_memory_cache", zap.Error(err))
		} else {
			a.RedisCache = redisCache
			cache = redisCache
			log.Info("connected_to_redis")
		}
	}

	a.Catalog = ai.NewCatalog(a.Registry, ai.CatalogMode(cfg.ModelCatalogMode), cache, cfg.ModelCacheTTL, log)
	log.Info("model_catalog_configured",
		zap.String("mode", string(a.Catalog.Mode())),
		zap.Duration("cache_ttl", cfg.ModelCacheTTL),
	)
	a.Service = assistant.NewService(a.Prefs, a.History, a.Registry, a.Catalog, log, assistant.Options{
		HistoryEnabled: cfg.HistoryEnabled,
		HistoryLimit:   cfg.HistoryLimit,
	})
	return a, nil
}

// Close releases the database and cache connections
func (a *App) Close() error {
	var errs []error
	if a.RedisCache != nil {
		errs = append(errs, a.RedisCache.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
