package handler

import (
	"log"
	"net/http"
	"time"

	"classplan/internal/middleware"
	"classplan/internal/timetable"
)

type RouterConfig struct {
	Manager  *timetable.SessionManager
	Sessions *middleware.SessionStore
	Logger   *log.Logger
	// Now overrides the clock used to resolve the current class.
	Now func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	v := newValidator()
	registration := NewRegistrationHandler(cfg.Manager, v, cfg.Logger)
	login := NewLoginHandler(cfg.Manager, cfg.Sessions, v, cfg.Logger)
	accounts := NewAccountHandler(cfg.Manager, cfg.Sessions, v, cfg.Logger)
	subjects := NewSubjectsHandler(cfg.Manager, cfg.Sessions, v, cfg.Logger)
	schedule := NewScheduleHandler(cfg.Manager, cfg.Sessions, v, cfg.Logger)
	home := NewHomeHandler(cfg.Manager, cfg.Sessions, cfg.Logger, cfg.Now)

	auth := func(h http.HandlerFunc) http.Handler {
		return cfg.Sessions.RequireAuth(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", Health)

	mux.HandleFunc("POST /api/v1/auth/register", registration.Register)
	mux.HandleFunc("POST /api/v1/auth/login", login.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", login.Logout)
	mux.Handle("POST /api/v1/auth/password", auth(accounts.ChangePassword))
	mux.Handle("DELETE /api/v1/account", auth(accounts.Delete))

	mux.HandleFunc("GET /api/v1/catalog", subjects.Catalog)
	mux.Handle("GET /api/v1/subjects", auth(subjects.List))
	mux.Handle("POST /api/v1/subjects", auth(subjects.Register))
	mux.Handle("DELETE /api/v1/subjects/{code}", auth(subjects.Unregister))

	mux.Handle("GET /api/v1/schedule", auth(schedule.Get))
	mux.Handle("POST /api/v1/schedule/classes", auth(schedule.AddClass))
	mux.Handle("DELETE /api/v1/schedule/classes/{id}", auth(schedule.DeleteClass))
	mux.Handle("DELETE /api/v1/schedule", auth(schedule.Clear))

	mux.Handle("GET /api/v1/now", auth(home.Now))

	return middleware.RequestLogger(cfg.Logger)(mux)
}
