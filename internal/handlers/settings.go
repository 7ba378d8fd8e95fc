package handlers

import (
	"net/http"

	logpkg "github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/assistant"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ModelsResponse wraps a model list
type ModelsResponse struct {
	Models []models.ModelInfo `json:"models"`
}

// GetSettings handles GET /api/settings. API keys are masked.
func (h *AssistantHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Settings(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, assistant.NewSettingsView(prefs))
}

// UpdateSettings handles POST /api/settings
func (h *AssistantHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req assistant.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prefs, err := h.service.UpdateSettings(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	logpkg.WithContext(r.Context(), h.logger).Info("settings_updated",
		zap.String("provider", string(prefs.ActiveProvider)),
	)
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ListModels handles GET /api/models/{provider}?url=
func (h *AssistantHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	list, err := h.service.ListModels(r.Context(), provider, r.URL.Query().Get("url"))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []models.ModelInfo{}
	}
	respondJSON(w, http.StatusOK, ModelsResponse{Models: list})
}

// Status handles GET /api/status?url=. An unreachable provider is reported
// as disconnected, not as an error.
func (h *AssistantHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.CheckStatus(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
