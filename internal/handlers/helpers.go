package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/benvon/plume/internal/database"
	logpkg "github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/services/ai"
	"github.com/benvon/plume/internal/validation"
	"go.uber.org/zap"
)

const maxErrorMessageLength = 200

// respondJSON sends data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage bounds the length of messages sent to clients
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends {"error": message}
func respondJSONError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": sanitizeErrorMessage(message)})
}

// decodeJSON reads the request body into dst. It answers the client itself
// and returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		respondJSONError(w, http.StatusBadRequest, "Request body is required")
	case errors.As(err, &maxBytesErr):
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large")
	default:
		respondJSONError(w, http.StatusBadRequest, "Invalid JSON body")
	}
	return false
}

// errorStatus maps a service error to an HTTP status and a client message
func errorStatus(err error) (int, string) {
	var (
		notFound *ai.ErrProviderNotFound
		apiErr   *ai.APIError
	)
	switch {
	case validation.IsValidationError(err):
		return http.StatusBadRequest, validationMessage(err)
	case errors.As(err, &notFound):
		return http.StatusInternalServerError, notFound.Error()
	case ai.IsMissingCredentialError(err):
		return http.StatusUnauthorized, err.Error()
	case ai.IsTimeoutError(err):
		return http.StatusGatewayTimeout, "The AI provider did not answer in time"
	case ai.IsUnavailableError(err):
		return http.StatusServiceUnavailable, "The AI provider is unavailable"
	case errors.As(err, &apiErr):
		return http.StatusInternalServerError, apiErr.Error()
	case errors.Is(err, ai.ErrProviderResponse):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, database.ErrStorage):
		return http.StatusInternalServerError, "Storage error"
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

func validationMessage(err error) string {
	var vErr *validation.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	return err.Error()
}

// respondServiceError logs err and answers with the mapped status
func respondServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, message := errorStatus(err)

	log := logpkg.WithContext(r.Context(), logger)
	fields := []zap.Field{
		zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		zap.Int("status_code", status),
		zap.String("error", logpkg.SanitizeError(err)),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request_failed", fields...)
	} else {
		log.Warn("request_rejected", fields...)
	}

	respondJSONError(w, status, message)
}

// queryLimit parses ?limit=. Absent means -1 (the configured default).
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return -1, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, validation.NewValidationError("limit", "must be a non-negative integer")
	}
	return limit, nil
}
