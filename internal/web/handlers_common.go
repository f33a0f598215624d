package web

// Shared request parsing and response helpers used across handlers.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/techbeat/internal/core"
	"github.com/JonMunkholm/techbeat/internal/logging"
	"github.com/JonMunkholm/techbeat/internal/web/templates"
)

// MaxFormSize bounds request bodies. Grid and gallery payloads are tiny.
const MaxFormSize = 64 * 1024

type viewKey struct{}

// viewCtx resolves {viewID} once for every grid route and tags the request
// logger with it.
func (s *Server) viewCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "viewID")
		v, err := s.service.View(id)
		if err != nil {
			if !isHTMX(r) && r.Method == http.MethodGet && !strings.HasPrefix(r.URL.Path, "/api/") {
				// A reload of an evicted page starts over with a fresh grid.
				http.Redirect(w, r, "/grid", http.StatusSeeOther)
				return
			}
			respondError(w, r, err, statusFor(err))
			return
		}

		ctx := logging.WithViewID(r.Context(), v.ID())
		ctx = context.WithValue(ctx, viewKey{}, v)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func viewFromContext(r *http.Request) *core.View {
	v, _ := r.Context().Value(viewKey{}).(*core.View)
	return v
}

// renderHTML writes a templ component as HTML with the given status.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error", "error", err)
	}
}

// respondView writes the result of a grid operation. HTMX requests get the
// table partial, browser form posts are redirected back to the page, and
// everything else gets the JSON snapshot.
func respondView(w http.ResponseWriter, r *http.Request, snap core.Snapshot, err error) {
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	switch {
	case isHTMX(r):
		renderHTML(w, r, http.StatusOK, templ.Join(templates.GridPartial(snap), templates.ClearAlerts()))
	case r.Method != http.MethodGet && !wantsJSON(r):
		http.Redirect(w, r, "/grid/"+snap.ID, http.StatusSeeOther)
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

// formValues reads a flat set of fields from either a JSON object or a
// URL-encoded form. JSON scalars are converted to their string form.
func formValues(r *http.Request) (map[string]string, error) {
	out := make(map[string]string)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
		}
		for k, v := range raw {
			if v == nil {
				continue
			}
			out[k] = fmt.Sprint(v)
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	for k := range r.Form {
		out[k] = r.Form.Get(k)
	}
	return out, nil
}

// limitBody caps the request body at MaxFormSize.
func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
}

// intParam parses a path parameter as an integer.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", errInvalidRequest, name, raw)
	}
	return n, nil
}

// intValue parses a form field as an integer.
func intValue(vals map[string]string, name string) (int, error) {
	raw, ok := vals[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", errInvalidRequest, name)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", errInvalidRequest, name, raw)
	}
	return n, nil
}
