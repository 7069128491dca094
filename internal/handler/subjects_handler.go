package handler

import (
	"log"
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"

	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

type SubjectsHandler struct {
	manager  *timetable.SessionManager
	sessions *middleware.SessionStore
	validate *validator.Validate
	logger   *log.Logger
}

func NewSubjectsHandler(manager *timetable.SessionManager, sessions *middleware.SessionStore, validate *validator.Validate, logger *log.Logger) *SubjectsHandler {
	return &SubjectsHandler{
		manager:  manager,
		sessions: sessions,
		validate: validate,
		logger:   logger,
	}
}

type catalogEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog lists the subjects offered for registration.
func (h *SubjectsHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	info, err := h.manager.SubjectsInfo(r.Context())
	if err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	entries := make([]catalogEntry, 0, len(info))
	for code, name := range info {
		entries = append(entries, catalogEntry{Code: code, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	writeJSON(w, http.StatusOK, entries)
}

type registeredSubject struct {
	Code    string `json:"code"`
	Name    string `json:"name,omitempty"`
	Link    string `json:"link"`
	JoinURL string `json:"join_url"`
}

func (h *SubjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := timetable.LoadSubjects(r.Context(), account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}

	out := make([]registeredSubject, 0, len(subs.Codes()))
	for _, code := range subs.Codes() {
		link, _ := subs.Link(code)
		joinURL, _ := subs.JoinURL(code)
		// A subject dropped from the catalog still lists, without a name.
		name, _ := subs.DisplayName(code)
		out = append(out, registeredSubject{Code: code, Name: name, Link: link, JoinURL: joinURL})
	}
	writeJSON(w, http.StatusOK, out)
}

type registerSubjectRequest struct {
	SubjectCode string `json:"subject_code" validate:"required,alphanum,max=16"`
	ClassType   string `json:"class_type" validate:"required,oneof=Lecture Tutorial"`
	Link        string `json:"link" validate:"required,max=512"`
	// Replace is the registration code this entry supersedes, if any.
	Replace string `json:"replace" validate:"omitempty,max=32"`
}

func (h *SubjectsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerSubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SubjectCode = normalizeSubjectCode(req.SubjectCode)
	req.ClassType = normalizeClassType(req.ClassType)
	if !validateRequest(w, h.validate, &req) {
		return
	}

	ctx := r.Context()
	subs, err := timetable.LoadSubjects(ctx, account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	if _, ok := subs.Catalog()[req.SubjectCode]; !ok {
		respondError(w, r, h.logger, nil, timetable.ErrUnknownSubject)
		return
	}
	if err := subs.Register(req.SubjectCode, req.ClassType, req.Link, req.Replace); err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	if err := subs.Save(ctx); err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}

	code := timetable.RegistrationCode(req.SubjectCode, req.ClassType)
	name, _ := subs.DisplayName(code)
	joinURL, _ := subs.JoinURL(code)
	writeJSON(w, http.StatusCreated, registeredSubject{Code: code, Name: name, Link: req.Link, JoinURL: joinURL})
}

// Unregister drops a registration. Its classes leave the timetable the next time the
// schedule is loaded.
func (h *SubjectsHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := timetable.LoadSubjects(ctx, account(r, h.manager))
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	if err := subs.Unregister(r.PathValue("code")); err != nil {
		respondError(w, r, h.logger, nil, err)
		return
	}
	if err := subs.Save(ctx); err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
