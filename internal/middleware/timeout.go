package middleware

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds a whole request, provider call included
	DefaultRequestTimeout = 90 * time.Second

	timeoutBody = `{"error":"Request timed out"}`
)

// Timeout creates a middleware that enforces a timeout on request handlers.
// It should be longer than any outbound provider timeout so the provider
// error, not this one, reaches the client.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		handler := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			w.Header().Set("Content-Type", "application/json")
			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
