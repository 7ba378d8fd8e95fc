package middleware

import (
	"net/http"

	logpkg "github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/request"
	"go.uber.org/zap"
)

// Audit logs credential rejections and upstream provider failures
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			statusCode := wrapped.statusCode
			var event string
			switch statusCode {
			case http.StatusUnauthorized:
				event = "credential_rejected"
			case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				event = "provider_failure"
			default:
				return
			}

			logpkg.WithContext(r.Context(), logger).Warn(event,
				zap.Int("status_code", statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			)
		})
	}
}
