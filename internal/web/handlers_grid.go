package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/techbeat/internal/grid"
	"github.com/JonMunkholm/techbeat/internal/logging"
)

// handleCreateGrid opens a view and returns its loading snapshot.
func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	v := s.service.OpenView(r.Context())
	snap := v.Snapshot()

	if !isHTMX(r) && !wantsJSON(r) {
		http.Redirect(w, r, "/grid/"+v.ID(), http.StatusSeeOther)
		return
	}
	w.Header().Set("Location", "/api/grids/"+v.ID())
	if isHTMX(r) {
		respondView(w, r, snap, nil)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	respondView(w, r, viewFromContext(r).Snapshot(), nil)
}

func (s *Server) handleDeleteGrid(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseView(viewFromContext(r).ID()); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetQuery applies search and filters. Fields the request omits keep
// their current value.
func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	vals, err := formValues(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	v := viewFromContext(r)
	q := v.Snapshot().State.Query
	if val, ok := vals["search"]; ok {
		q.Search = val
	}
	if val, ok := vals["role"]; ok {
		q.Role = val
	}
	if val, ok := vals["status"]; ok {
		q.Status = val
	}

	snap, err := v.SetQuery(q)
	respondView(w, r, snap, err)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	field, err := grid.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	snap, err := viewFromContext(r).ToggleSort(field)
	respondView(w, r, snap, err)
}

func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	snap, err := viewFromContext(r).GoToPage(page)
	respondView(w, r, snap, err)
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	snap, err := viewFromContext(r).NextPage()
	respondView(w, r, snap, err)
}

func (s *Server) handlePrevPage(w http.ResponseWriter, r *http.Request) {
	snap, err := viewFromContext(r).PrevPage()
	respondView(w, r, snap, err)
}

func (s *Server) handleToggleRow(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "rowID")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	snap, err := viewFromContext(r).ToggleRow(id)
	respondView(w, r, snap, err)
}

func (s *Server) handleSelectPage(w http.ResponseWriter, r *http.Request) {
	snap, err := viewFromContext(r).ToggleAllOnPage()
	respondView(w, r, snap, err)
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "rowID")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	snap, err := viewFromContext(r).DeleteRow(id)
	if err == nil {
		logging.FromContext(r.Context()).Info("row deleted", "row_id", id)
	}
	respondView(w, r, snap, err)
}

// handleBeginEdit puts the cell named by the id and field values into edit
// mode.
func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	vals, err := formValues(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	id, err := intValue(vals, "id")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	field, err := grid.ParseField(strings.TrimSpace(vals["field"]))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	snap, err := viewFromContext(r).BeginEdit(id, field)
	respondView(w, r, snap, err)
}

// handleEditInput stores one keystroke's worth of the edited value.
func (s *Server) handleEditInput(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	vals, err := formValues(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	val, ok := vals["value"]
	if !ok {
		err := fmt.Errorf("%w: missing value", errInvalidRequest)
		respondError(w, r, err, statusFor(err))
		return
	}
	snap, err := viewFromContext(r).EditInput(val)
	respondView(w, r, snap, err)
}

func (s *Server) handleCommitEdit(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	vals, err := formValues(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	v := viewFromContext(r)
	val, ok := vals["value"]
	if !ok {
		// Nothing typed since the last keystroke; just leave edit mode.
		snap, err := v.BlurEdit()
		respondView(w, r, snap, err)
		return
	}
	snap, err := v.CommitEdit(val)
	respondView(w, r, snap, err)
}

func (s *Server) handleBlurEdit(w http.ResponseWriter, r *http.Request) {
	snap, err := viewFromContext(r).BlurEdit()
	respondView(w, r, snap, err)
}
