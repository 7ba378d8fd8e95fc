package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// VersionHandler reports the build version
type VersionHandler struct {
	version string
}

// NewVersionHandler creates a version handler
func NewVersionHandler(version string) *VersionHandler {
	if version == "" {
		version = "dev"
	}
	return &VersionHandler{version: version}
}

// RegisterRoutes registers /version
func (h *VersionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/version", h.Version).Methods("GET")
}

// Version handles GET /version
func (h *VersionHandler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Routes groups the handlers mounted by NewRouter. Nil handlers are skipped.
type Routes struct {
	Assistant *AssistantHandler
	Health    *HealthChecker
	OpenAPI   *OpenAPIHandler
	Version   *VersionHandler
}

// NewRouter builds the API router. Unknown routes and wrong methods answer
// with a JSON error.
func NewRouter(routes Routes) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)

	if routes.Health != nil {
		routes.Health.RegisterRoutes(r)
	}
	if routes.Version != nil {
		routes.Version.RegisterRoutes(r)
	}
	if routes.OpenAPI != nil {
		routes.OpenAPI.RegisterRoutes(r)
	}
	if routes.Assistant != nil {
		api := r.PathPrefix("/api").Subrouter()
		api.NotFoundHandler = http.HandlerFunc(NotFound)
		api.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)
		routes.Assistant.RegisterRoutes(api)
	}
	return r
}

// NotFound answers unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondJSONError(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
