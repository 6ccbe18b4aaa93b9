package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/pkordes/fleetlog/api"
)

// healthPingTimeout bounds the database ping behind GET /healthz.
const healthPingTimeout = 2 * time.Second

// HealthResponse is the body of GET /healthz. Database is omitted when the
// server was built without one.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// GetHealth handles GET /healthz: 200 when the server and its database are
// up, 503 when the database ping fails.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "health check: database ping failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.OpenAPI)
}
