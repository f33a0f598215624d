package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/techbeat/internal/forms"
	"github.com/JonMunkholm/techbeat/internal/logging"
	"github.com/JonMunkholm/techbeat/internal/web/templates"
)

// RecordResponse is the JSON reply to a record submission. Index is the
// stored position, or -1 when a new record was rejected.
type RecordResponse struct {
	forms.ValidationResult
	Index  int                `json:"index"`
	Record forms.PersonalInfo `json:"record"`
}

// RecordsList is the JSON body of the records listing.
type RecordsList struct {
	Records []forms.PersonalInfo `json:"records"`
}

func (s *Server) recordsState() templates.RecordsState {
	return templates.RecordsState{Records: s.records.List()}
}

func (s *Server) handleRecordsPage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, http.StatusOK, templates.RecordsPage(s.recordsState()))
}

// handleListRecords returns the records, or a fresh form and table for HTMX
// (used by the cancel button).
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		s.renderRecords(w, r, http.StatusOK, s.recordsState())
		return
	}
	list := s.records.List()
	if list == nil {
		list = []forms.PersonalInfo{}
	}
	writeJSON(w, http.StatusOK, RecordsList{Records: list})
}

// handleSubmitRecord validates a personal info form. With an index field it
// replaces that record, otherwise it appends a new one.
func (s *Server) handleSubmitRecord(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	vals, err := formValues(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	index, editing := -1, false
	if raw := strings.TrimSpace(vals["index"]); raw != "" {
		if index, err = intValue(vals, "index"); err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		editing = true
	}

	rec := personalInfo(vals)
	result := withErrorCodes(forms.ValidatePersonalInfo(rec))
	s.metrics.FormSubmitted("records", result.Valid)
	if !result.Valid {
		logging.FromContext(r.Context()).Debug("record rejected", "error", result.Err())
		st := s.recordsState()
		st.Form, st.Result, st.Editing, st.Index = rec, result, editing, index
		s.respondRecord(w, r, http.StatusUnprocessableEntity, st, RecordResponse{ValidationResult: result, Index: index, Record: rec})
		return
	}

	status := http.StatusCreated
	if editing {
		if err := s.records.Replace(index, rec); err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		status = http.StatusOK
	} else {
		index = s.records.Add(rec)
	}
	logging.WithFields(r.Context(), "index", index, "replaced", editing).Info("record saved")

	s.respondRecord(w, r, status, s.recordsState(), RecordResponse{ValidationResult: result, Index: index, Record: rec})
}

// handleGetRecord returns one record. HTMX gets the form prefilled for
// editing it.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	rec, err := s.records.Get(index)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		st := s.recordsState()
		st.Form, st.Editing, st.Index = rec, true, index
		s.renderRecords(w, r, http.StatusOK, st)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord removes one record. Deleting an index that is already
// gone does nothing.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if s.records.Delete(index) {
		logging.WithFields(r.Context(), "index", index).Info("record deleted")
	}

	if isHTMX(r) {
		s.renderRecords(w, r, http.StatusOK, s.recordsState())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondRecord(w http.ResponseWriter, r *http.Request, status int, st templates.RecordsState, resp RecordResponse) {
	switch {
	case isHTMX(r):
		s.renderRecords(w, r, status, st)
	case wantsJSON(r):
		writeJSON(w, status, resp)
	case status < http.StatusBadRequest:
		http.Redirect(w, r, "/records", http.StatusSeeOther)
	default:
		renderHTML(w, r, status, templates.RecordsPage(st))
	}
}

func (s *Server) renderRecords(w http.ResponseWriter, r *http.Request, status int, st templates.RecordsState) {
	renderHTML(w, r, status, templ.Join(templates.RecordsPartial(st), templates.ClearAlerts()))
}

// personalInfo builds a record from submitted fields. An unparsable date
// stays zero and fails validation.
func personalInfo(vals map[string]string) forms.PersonalInfo {
	return forms.PersonalInfo{
		FirstName:   strings.TrimSpace(vals["firstName"]),
		LastName:    strings.TrimSpace(vals["lastName"]),
		Email:       strings.TrimSpace(vals["email"]),
		Phone:       strings.TrimSpace(vals["phone"]),
		DateOfBirth: parseDate(vals["dateOfBirth"]),
		Address:     strings.TrimSpace(vals["address"]),
		City:        strings.TrimSpace(vals["city"]),
		State:       strings.TrimSpace(vals["state"]),
		PostalCode:  strings.TrimSpace(vals["postalCode"]),
		Country:     strings.TrimSpace(vals["country"]),
	}
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{forms.DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
