package handler

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

// AccountHandler serves operations on the logged-in account itself.
type AccountHandler struct {
	manager  *timetable.SessionManager
	sessions *middleware.SessionStore
	validate *validator.Validate
	logger   *log.Logger
}

func NewAccountHandler(manager *timetable.SessionManager, sessions *middleware.SessionStore, validate *validator.Validate, logger *log.Logger) *AccountHandler {
	return &AccountHandler{
		manager:  manager,
		sessions: sessions,
		validate: validate,
		logger:   logger,
	}
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	acct := account(r, h.manager)
	ok, err := acct.LoggedIn(r.Context())
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	if !ok {
		respondError(w, r, h.logger, h.sessions, timetable.ErrSessionExpired)
		return
	}

	err = h.manager.ChangePassword(r.Context(), acct.StudentID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := account(r, h.manager).Delete(r.Context()); err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	_ = h.sessions.Clear(w, r)
	w.WriteHeader(http.StatusNoContent)
}
