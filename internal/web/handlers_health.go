package web

import (
	"net/http"

	"github.com/JonMunkholm/techbeat/internal/core"
)

// HealthResponse reports liveness plus view and load counters.
type HealthResponse struct {
	Status string                 `json:"status"`
	Views  int                    `json:"views"`
	Loads  core.LoadLimiterStatus `json:"loads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Views:  s.service.ViewCount(),
		Loads:  s.service.LoadLimiterStatus(),
	})
}
