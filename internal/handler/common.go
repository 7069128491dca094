package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// bind decodes the body into dst and validates it. On failure the response is
// already written.
func bind(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return validateRequest(w, v, dst)
}

func validateRequest(w http.ResponseWriter, v *validator.Validate, dst interface{}) bool {
	err := v.Struct(dst)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "invalid input")
		return false
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
	return false
}

func statusFor(err error) int {
	switch {
	case timetable.IsStorageError(err):
		return http.StatusBadGateway
	case errors.Is(err, timetable.ErrSessionExpired),
		errors.Is(err, timetable.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, timetable.ErrInvalidIdentifier),
		errors.Is(err, timetable.ErrPasswordMismatch),
		errors.Is(err, timetable.ErrMalformedIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, timetable.ErrUnknownAccount),
		errors.Is(err, timetable.ErrNotFound),
		errors.Is(err, timetable.ErrNotRegistered),
		errors.Is(err, timetable.ErrUnknownSubject):
		return http.StatusNotFound
	case errors.Is(err, timetable.ErrAlreadyRegistered),
		errors.Is(err, timetable.ErrAlreadyLoggedIn),
		errors.Is(err, timetable.ErrDuplicateRegistration),
		errors.Is(err, timetable.ErrTimeSlotConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a domain error to a status. An expired session also drops the
// cookie so the client logs in again.
func respondError(w http.ResponseWriter, r *http.Request, logger *log.Logger, sessions *middleware.SessionStore, err error) {
	status := statusFor(err)
	if timetable.IsSessionExpired(err) && sessions != nil {
		_ = sessions.Clear(w, r)
	}
	if status >= http.StatusInternalServerError {
		logger.Printf("[handler] request_id=%s path=%s err=%v", middleware.RequestID(r.Context()), r.URL.Path, err)
		if status == http.StatusBadGateway {
			writeError(w, status, "storage unavailable")
			return
		}
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// account rebinds the session held by the request cookie.
func account(r *http.Request, m *timetable.SessionManager) *timetable.Account {
	id, _ := middleware.IdentityFrom(r.Context())
	return m.Resume(id.StudentID, id.Token)
}

// Casers keep state between calls, so each request gets its own.
func normalizeDay(day string) string {
	return cases.Title(language.English).String(strings.TrimSpace(day))
}

func normalizeClassType(classType string) string {
	return cases.Title(language.English).String(strings.TrimSpace(classType))
}

func normalizeSubjectCode(code string) string {
	return cases.Upper(language.English).String(strings.TrimSpace(code))
}
