package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/techbeat/internal/core"
	"github.com/JonMunkholm/techbeat/internal/forms"
	"github.com/JonMunkholm/techbeat/internal/logging"
	"github.com/JonMunkholm/techbeat/internal/web/templates"
)

// GalleryResponse is the JSON reply to a gallery submission.
type GalleryResponse struct {
	forms.ValidationResult
	Values forms.GalleryForm `json:"values"`
}

// handleGallerySubmit validates the demo form. Invalid submissions are
// rejected immediately with 422; valid ones are echoed back after the
// simulated round trip.
func (s *Server) handleGallerySubmit(w http.ResponseWriter, r *http.Request) {
	limitBody(w, r)
	vals, err := formValues(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	form := galleryForm(vals)
	result := withErrorCodes(forms.ValidateGallery(form))
	s.metrics.FormSubmitted("gallery", result.Valid)
	if !result.Valid {
		logging.FromContext(r.Context()).Debug("gallery form rejected", "error", result.Err())
		s.respondGallery(w, r, http.StatusUnprocessableEntity, templates.GalleryState{Form: form, Result: result})
		return
	}

	if s.formDelay > 0 {
		t := time.NewTimer(s.formDelay)
		select {
		case <-r.Context().Done():
			t.Stop()
			respondError(w, r, r.Context().Err(), http.StatusServiceUnavailable)
			return
		case <-t.C:
		}
	}

	echo, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.respondGallery(w, r, http.StatusOK, templates.GalleryState{Form: form, Result: result, Echo: string(echo)})
}

func (s *Server) respondGallery(w http.ResponseWriter, r *http.Request, status int, st templates.GalleryState) {
	switch {
	case isHTMX(r):
		renderHTML(w, r, status, templates.GalleryPartial(st))
	case wantsJSON(r):
		writeJSON(w, status, GalleryResponse{ValidationResult: st.Result, Values: st.Form})
	default:
		renderHTML(w, r, status, templates.GalleryPage(st))
	}
}

// withErrorCodes attaches the support code of each field message.
func withErrorCodes(res forms.ValidationResult) forms.ValidationResult {
	for i, e := range res.Errors {
		res.Errors[i].Code = core.MapError(e).Code
	}
	return res
}

// galleryForm builds the form from submitted fields. An unparsable age is
// treated as zero so it fails the minimum-age rule.
func galleryForm(vals map[string]string) forms.GalleryForm {
	age, _ := strconv.Atoi(strings.TrimSpace(vals["age"]))
	terms, _ := strconv.ParseBool(vals["terms"])
	if vals["terms"] == "on" {
		terms = true
	}
	return forms.GalleryForm{
		Username: vals["username"],
		Email:    strings.TrimSpace(vals["email"]),
		Age:      age,
		Terms:    terms,
		Role:     vals["role"],
	}
}
