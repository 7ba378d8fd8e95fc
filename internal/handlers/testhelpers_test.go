package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benvon/plume/internal/database"
	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/services/assistant"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// fakeAdapter answers every call with canned values and counts calls
type fakeAdapter struct {
	provider models.Provider
	text     string
	err      error
	list     []models.ModelInfo
	calls    atomic.Int32
}

func (f *fakeAdapter) Provider() models.Provider { return f.provider }

func (f *fakeAdapter) Generate(context.Context, string, string, models.ProviderSettings) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeAdapter) ListModels(context.Context, models.ProviderSettings) ([]models.ModelInfo, error) {
	return f.list, f.err
}

func (f *fakeAdapter) CheckStatus(context.Context, models.ProviderSettings) models.ProviderStatus {
	return models.ProviderStatus{State: models.StateConnected, Provider: f.provider}
}

// newTestRouter wires the real service over a temp SQLite database with
// the given adapters registered
func newTestRouter(t *testing.T, adapters ...ai.Adapter) *mux.Router {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "handlers_test.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := ai.NewRegistry()
	for _, adapter := range adapters {
		registry.Register(adapter)
	}
	catalog := ai.NewCatalog(registry, ai.CatalogStatic, ai.NewMemoryModelCache(0, time.Hour), time.Hour, zap.NewNop())

	service := assistant.NewService(
		database.NewPreferencesRepository(db, models.DefaultPreferences()),
		database.NewHistoryRepository(db),
		registry,
		catalog,
		zap.NewNop(),
		assistant.Options{HistoryEnabled: true, HistoryLimit: assistant.DefaultHistoryLimit},
	)

	return NewRouter(Routes{
		Assistant: NewAssistantHandler(service, zap.NewNop()),
		Version:   NewVersionHandler("test"),
	})
}

// doRequest sends method path with an optional JSON body through h
func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// decodeBody decodes the recorder body into a map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}
