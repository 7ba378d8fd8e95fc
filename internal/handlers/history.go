package handlers

import (
	"net/http"

	"github.com/benvon/plume/internal/models"
	"github.com/gorilla/mux"
)

// HistoryRecordsResponse wraps the records of one kind
type HistoryRecordsResponse struct {
	Records []*models.HistoryRecord `json:"records"`
}

// History handles GET /api/history?limit=
func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	summary, err := h.service.History(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// HistoryByKind handles GET /api/history/{kind}?limit=
func (h *AssistantHandler) HistoryByKind(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	records, err := h.service.HistoryByKind(r.Context(), mux.Vars(r)["kind"], limit)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, HistoryRecordsResponse{Records: records})
}

// ResetHistory handles POST /api/history/reset
func (h *AssistantHandler) ResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetHistory(r.Context()); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
