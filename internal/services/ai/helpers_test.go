package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benvon/plume/internal/models"
)

// countingServer starts an httptest server that counts requests before
// delegating to handler.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

// slowHandler blocks until the client gives up
func slowHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(2 * time.Second):
	case <-r.Context().Done():
	}
}

// closedServerURL returns the address of a server that is no longer listening
func closedServerURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

// stubAdapter is an in-memory Adapter with call counters
type stubAdapter struct {
	provider models.Provider
	text     string
	list     []models.ModelInfo
	err      error
	status   models.ProviderStatus

	generateCalls atomic.Int32
	listCalls     atomic.Int32
}

func (s *stubAdapter) Provider() models.Provider {
	return s.provider
}

func (s *stubAdapter) Generate(_ context.Context, _, _ string, _ models.ProviderSettings) (string, error) {
	s.generateCalls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubAdapter) ListModels(_ context.Context, _ models.ProviderSettings) ([]models.ModelInfo, error) {
	s.listCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubAdapter) CheckStatus(_ context.Context, _ models.ProviderSettings) models.ProviderStatus {
	return s.status
}
