package web

import (
	"net/http"

	"github.com/JonMunkholm/techbeat/internal/forms"
	"github.com/JonMunkholm/techbeat/internal/web/templates"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/grid", http.StatusFound)
}

// handleNewGridPage opens a fresh view; every visit to /grid gets its own.
func (s *Server) handleNewGridPage(w http.ResponseWriter, r *http.Request) {
	v := s.service.OpenView(r.Context())
	http.Redirect(w, r, "/grid/"+v.ID(), http.StatusSeeOther)
}

// handleGridPage renders the grid. The loading partial polls this URL, so
// HTMX requests get only the table.
func (s *Server) handleGridPage(w http.ResponseWriter, r *http.Request) {
	snap := viewFromContext(r).Snapshot()
	if isHTMX(r) {
		renderHTML(w, r, http.StatusOK, templates.GridPartial(snap))
		return
	}
	renderHTML(w, r, http.StatusOK, templates.GridPage(snap))
}

func (s *Server) handleGalleryPage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, http.StatusOK, templates.GalleryPage(templates.GalleryState{
		Form:   forms.DefaultGalleryForm(),
		Result: forms.ValidationResult{Valid: true},
	}))
}
