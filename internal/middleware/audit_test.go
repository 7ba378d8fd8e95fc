package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantEvent string
	}{
		{status: http.StatusOK},
		{status: http.StatusBadRequest},
		{status: http.StatusUnauthorized, wantEvent: "credential_rejected"},
		{status: http.StatusServiceUnavailable, wantEvent: "provider_failure"},
		{status: http.StatusGatewayTimeout, wantEvent: "provider_failure"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.InfoLevel)
			handler := Audit(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest("POST", "/api/translate", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.9")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantEvent == "" {
				if logs.Len() != 0 {
					t.Errorf("Expected no audit entry, got %d", logs.Len())
				}
				return
			}
			entries := logs.FilterMessage(tt.wantEvent).All()
			if len(entries) != 1 {
				t.Fatalf("Expected one %s entry, got %d", tt.wantEvent, len(entries))
			}
			if entries[0].ContextMap()["ip"] != "203.0.113.9" {
				t.Errorf("Unexpected ip %v", entries[0].ContextMap()["ip"])
			}
		})
	}
}
