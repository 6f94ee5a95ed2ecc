package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadID):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is what the page shows for err. Internal errors are not
// echoed back.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errBadID):
		return "Identifiant invalide."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Le montant doit être un nombre positif."
	case errors.Is(err, core.ErrEmptyDescription):
		return "La description est obligatoire."
	case errors.Is(err, core.ErrEmptyName):
		return "Le nom est obligatoire."
	case errors.Is(err, core.ErrFutureDate):
		return "La date ne peut pas être dans le futur."
	case errors.Is(err, core.ErrInvalidDate):
		return "Date invalide (format AAAA-MM-JJ)."
	case errors.Is(err, core.ErrInvalidPeriodStart):
		return "Une période commence toujours le 25."
	case errors.Is(err, core.ErrUnknownCategory):
		return "Catégorie inconnue."
	case errors.Is(err, core.ErrNotFound):
		return "Élément introuvable."
	default:
		return "Une erreur interne est survenue."
	}
}

// failure logs err at a level matching its status and writes a plain-text
// reply. Pages that can re-render with the message use renderPeriod instead.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	logger := applog.FromContext(r.Context())
	if status >= 500 {
		logger.ErrorContext(r.Context(), msg, applog.FieldError, err)
	} else {
		logger.WarnContext(r.Context(), msg, applog.FieldError, err, applog.FieldStatusCode, status)
	}
	http.Error(w, userMessage(err), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.failure(w, r, "JSON encoding failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "API request failed", applog.FieldError, err)
	}
	s.writeJSON(w, r, status, map[string]string{"error": userMessage(err)})
}

// render executes a template into a buffer first so a template error never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name, applog.FieldOperation, applog.OpRender)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// seeOther is the post/redirect/get reply for successful form writes.
func seeOther(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
