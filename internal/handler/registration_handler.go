package handler

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"classplan/internal/timetable"
)

type RegistrationHandler struct {
	manager  *timetable.SessionManager
	validate *validator.Validate
	logger   *log.Logger
}

func NewRegistrationHandler(manager *timetable.SessionManager, validate *validator.Validate, logger *log.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		manager:  manager,
		validate: validate,
		logger:   logger,
	}
}

type registerRequest struct {
	StudentID       string `json:"student_id" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !bind(w, r, h.validate, &req) {
		return
	}

	if err := h.manager.SignUp(r.Context(), req.StudentID, req.Password, req.ConfirmPassword); err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"student_id": req.StudentID})
}
