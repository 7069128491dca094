package handler

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"classplan/internal/entity"
	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

type ScheduleHandler struct {
	manager  *timetable.SessionManager
	sessions *middleware.SessionStore
	validate *validator.Validate
	logger   *log.Logger
}

func NewScheduleHandler(manager *timetable.SessionManager, sessions *middleware.SessionStore, validate *validator.Validate, logger *log.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		manager:  manager,
		sessions: sessions,
		validate: validate,
		logger:   logger,
	}
}

type classView struct {
	ID string `json:"id"`
	entity.Class
	Name     string `json:"name,omitempty"`
	Duration string `json:"duration"`
}

func newClassView(s *timetable.Schedule, c entity.Class) classView {
	name, _ := s.ClassName(c)
	return classView{
		ID:       c.ID(),
		Class:    c,
		Name:     name,
		Duration: timetable.DurationLabel(c),
	}
}

type weekView struct {
	Days map[string][]classView `json:"days"`
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	sch, err := timetable.LoadSchedule(r.Context(), account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}

	view := weekView{Days: make(map[string][]classView, len(entity.Weekdays))}
	for _, day := range entity.Weekdays {
		classes := sch.Day(day)
		views := make([]classView, 0, len(classes))
		for _, c := range classes {
			views = append(views, newClassView(sch, c))
		}
		view.Days[day] = views
	}
	writeJSON(w, http.StatusOK, view)
}

type addClassRequest struct {
	SubjectCode string `json:"subject_code" validate:"required,alphanum,max=16"`
	ClassType   string `json:"class_type" validate:"required,oneof=Lecture Tutorial"`
	Day         string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string `json:"start_time" validate:"required,len=4,numeric"`
	EndTime     string `json:"end_time" validate:"required,len=4,numeric"`
	// Replacing is the id of the class this one edits, if any.
	Replacing string `json:"replacing"`
}

func (h *ScheduleHandler) AddClass(w http.ResponseWriter, r *http.Request) {
	var req addClassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SubjectCode = normalizeSubjectCode(req.SubjectCode)
	req.ClassType = normalizeClassType(req.ClassType)
	req.Day = normalizeDay(req.Day)
	if !validateRequest(w, h.validate, &req) {
		return
	}

	class := entity.NewClass(req.SubjectCode, req.ClassType, req.Day, req.StartTime, req.EndTime)
	if _, err := entity.ParseClassID(class.ID()); err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	switch {
	case class.Start == class.End:
		writeError(w, http.StatusBadRequest, "start time cannot be the same as end time")
		return
	case class.EndOffset() < class.StartOffset():
		writeError(w, http.StatusBadRequest, "end time must be after start time")
		return
	}

	var replacing *entity.Class
	if req.Replacing != "" {
		old, err := entity.ParseClassID(req.Replacing)
		if err != nil {
			respondError(w, r, h.logger, nil, err)
			return
		}
		replacing = &old
	}

	ctx := r.Context()
	sch, err := timetable.LoadSchedule(ctx, account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	if !sch.IsRegistered(class.RegistrationCode()) {
		respondError(w, r, h.logger, nil, timetable.ErrNotRegistered)
		return
	}
	if err := sch.Add(class, replacing); err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	if err := sch.Save(ctx); err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	writeJSON(w, http.StatusCreated, newClassView(sch, class))
}

func (h *ScheduleHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	class, err := entity.ParseClassID(r.PathValue("id"))
	if err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}

	ctx := r.Context()
	sch, err := timetable.LoadSchedule(ctx, account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	if err := sch.Delete(class); err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	if err := sch.Save(ctx); err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sch, err := timetable.LoadSchedule(ctx, account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	if err := sch.Clear(ctx); err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
