package handler

import (
	"log"
	"net/http"
	"time"

	"classplan/internal/entity"
	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

// HomeHandler answers "what class is on now", the landing view of the app.
type HomeHandler struct {
	manager  *timetable.SessionManager
	sessions *middleware.SessionStore
	logger   *log.Logger
	now      func() time.Time
}

func NewHomeHandler(manager *timetable.SessionManager, sessions *middleware.SessionStore, logger *log.Logger, now func() time.Time) *HomeHandler {
	if now == nil {
		now = time.Now
	}
	return &HomeHandler{
		manager:  manager,
		sessions: sessions,
		logger:   logger,
		now:      now,
	}
}

type nowClass struct {
	classView
	JoinURL string `json:"join_url,omitempty"`
}

type nowResponse struct {
	Day     string    `json:"day"`
	Time    string    `json:"time"`
	Current *nowClass `json:"current"`
	Next    *nowClass `json:"next"`
}

func (h *HomeHandler) Now(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acct := account(r, h.manager)
	sch, err := timetable.LoadSchedule(ctx, acct)
	if err != nil {
		respondError(w, r, h.logger, h.sessions, err)
		return
	}

	now := h.now()
	day, _ := entity.DayName(entity.WeekdayIndex(now.Weekday()))
	resp := nowResponse{Day: day, Time: now.Format("15:04")}

	current, next := sch.Current(now)
	for _, slot := range []struct {
		class *entity.Class
		dst   **nowClass
	}{{current, &resp.Current}, {next, &resp.Next}} {
		if slot.class == nil {
			continue
		}
		view := &nowClass{classView: newClassView(sch, *slot.class)}
		link, err := acct.ClassLink(ctx, slot.class.RegistrationCode())
		if err != nil {
			respondError(w, r, h.logger, h.sessions, err)
			return
		}
		view.JoinURL = acct.JoinURL(link)
		*slot.dst = view
	}
	writeJSON(w, http.StatusOK, resp)
}
