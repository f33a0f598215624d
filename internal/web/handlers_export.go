package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/techbeat/internal/logging"
)

// handleExport downloads the selected rows, or all rows, as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := viewFromContext(r).Export()
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("grid exported", "rows", file.Rows)
	s.metrics.Exported(file.Rows)

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(file.Body)
}
