package server

import (
	"context"
	"net/http"

	"github.com/brk3/habitstate/internal/app"
	"github.com/brk3/habitstate/internal/habitstore"
	"github.com/brk3/habitstate/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	// Sessions verifies session cookies. When nil every request runs as
	// DefaultProfile without a session check.
	Sessions       *session.Codec
	DefaultProfile string
}

type Server struct {
	host *app.Host
	opts Options
}

func New(host *app.Host, opts Options) *Server {
	return &Server{host: host, opts: opts}
}

type storeCtxKey struct{}
type profileCtxKey struct{}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/habits", func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.listHabits)
		r.Post("/", s.addHabit)
		r.Get("/deleted", s.listDeleted)
		r.Get("/{habit_id}", s.getHabit)
		r.Patch("/{habit_id}", s.editHabit)
		r.Delete("/{habit_id}", s.deleteHabit)
		r.Post("/{habit_id}/toggle", s.toggleCompletion)
	})
	return r
}

func storeFromContext(ctx context.Context) *habitstore.Store {
	st, _ := ctx.Value(storeCtxKey{}).(*habitstore.Store)
	return st
}

func profileFromContext(ctx context.Context) string {
	p, _ := ctx.Value(profileCtxKey{}).(string)
	return p
}
