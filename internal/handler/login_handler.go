package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

type LoginHandler struct {
	manager  *timetable.SessionManager
	sessions *middleware.SessionStore
	validate *validator.Validate
	logger   *log.Logger
}

func NewLoginHandler(manager *timetable.SessionManager, sessions *middleware.SessionStore, validate *validator.Validate, logger *log.Logger) *LoginHandler {
	return &LoginHandler{
		manager:  manager,
		sessions: sessions,
		validate: validate,
		logger:   logger,
	}
}

type loginRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
	// Force ends a session held elsewhere before logging in.
	Force bool `json:"force"`
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	ctx := r.Context()
	acct, err := h.manager.Login(ctx, req.StudentID, req.Password)
	if errors.Is(err, timetable.ErrAlreadyLoggedIn) && req.Force {
		if err := h.manager.LogoutRemote(ctx, req.StudentID); err != nil {
			respondError(w, r, h.logger, nil, err)
			return
		}
		acct, err = h.manager.Login(ctx, req.StudentID, req.Password)
	}
	if err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}

	if err := h.sessions.Save(w, r, middleware.Identity{StudentID: acct.StudentID, Token: acct.Token}); err != nil {
		h.logger.Printf("[login] save cookie failed student_id=%s err=%v", acct.StudentID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"student_id": acct.StudentID})
}

// Logout ends the session held by the cookie, if it is still the current one, and
// drops the cookie either way.
func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.sessions.Load(r); ok {
		acct := h.manager.Resume(id.StudentID, id.Token)
		if err := acct.Logout(r.Context()); err != nil {
			respondError(w, r, h.logger, nil, err)
			return
		}
	}
	_ = h.sessions.Clear(w, r)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
