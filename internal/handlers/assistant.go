package handlers

import (
	"net/http"

	"github.com/benvon/plume/internal/services/assistant"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AssistantHandler serves the writing operations, settings, model
// catalog, provider status and history routes
type AssistantHandler struct {
	service *assistant.Service
	logger  *zap.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(service *assistant.Service, logger *zap.Logger) *AssistantHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantHandler{service: service, logger: logger}
}

// RegisterRoutes registers assistant routes on the given router.
// The router should already carry the /api prefix.
func (h *AssistantHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/reformulate", h.Reformulate).Methods("POST")
	r.HandleFunc("/translate", h.Translate).Methods("POST")
	r.HandleFunc("/correct", h.Correct).Methods("POST")
	r.HandleFunc("/generate-email", h.GenerateEmail).Methods("POST")

	r.HandleFunc("/settings", h.GetSettings).Methods("GET")
	r.HandleFunc("/settings", h.UpdateSettings).Methods("POST")
	r.HandleFunc("/models/{provider}", h.ListModels).Methods("GET")
	r.HandleFunc("/status", h.Status).Methods("GET")

	r.HandleFunc("/history", h.History).Methods("GET")
	r.HandleFunc("/history/reset", h.ResetHistory).Methods("POST")
	r.HandleFunc("/history/{kind}", h.HistoryByKind).Methods("GET")
}

// Reformulate handles POST /api/reformulate
func (h *AssistantHandler) Reformulate(w http.ResponseWriter, r *http.Request) {
	var req assistant.ReformulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Reformulate(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Translate handles POST /api/translate
func (h *AssistantHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req assistant.TranslateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Translate(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Correct handles POST /api/correct
func (h *AssistantHandler) Correct(w http.ResponseWriter, r *http.Request) {
	var req assistant.CorrectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Correct(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GenerateEmail handles POST /api/generate-email
func (h *AssistantHandler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req assistant.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.GenerateEmail(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
