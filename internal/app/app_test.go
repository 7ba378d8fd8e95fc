package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benvon/plume/internal/config"
	"github.com/benvon/plume/internal/models"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:      filepath.Join(t.TempDir(), "app_test.db"),
		ModelCatalogMode: config.CatalogModeStatic,
		ModelCacheTTL:    time.Hour,
		HistoryEnabled:   true,
		HistoryLimit:     10,
		Seed: config.Seed{
			AIProvider:  string(models.ProviderGroq),
			OllamaURL:   models.DefaultOllamaURL,
			OllamaModel: models.DefaultOllamaModel,
			GroqKey:     "gsk_seeded_key_123456",
			GroqModel:   models.DefaultGroqModel,
		},
	}
}

func TestNew_SeedsPreferencesOnFirstRead(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(t), zap.NewNop(), false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	prefs, err := a.Service.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	if prefs.ActiveProvider != models.ProviderGroq {
		t.Errorf("Expected seeded provider groq, got %s", prefs.ActiveProvider)
	}
	if prefs.Settings(models.ProviderGroq).APIKey != "gsk_seeded_key_123456" {
		t.Error("Expected seeded groq key")
	}
	if len(a.Registry.Providers()) != len(models.AllProviders()) {
		t.Errorf("Expected every provider registered, got %v", a.Registry.Providers())
	}
	if a.RedisCache != nil {
		t.Error("Expected no Redis cache without REDIS_URL")
	}
}

func TestNew_UnreachableRedisFallsBack(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	a, err := New(context.Background(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.RedisCache != nil {
		t.Error("Expected memory cache fallback")
	}
	list, err := a.Service.ListModels(context.Background(), "groq", "")
	if err != nil || len(list) == 0 {
		t.Errorf("Expected static groq models, got %v, %v", list, err)
	}
}
