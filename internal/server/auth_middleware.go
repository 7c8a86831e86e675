package server

import (
	"cmp"
	"context"
	"errors"
	"net/http"

	"github.com/brk3/habitstate/internal/app"
	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/internal/session"
)

// sessionMiddleware resolves the request's session and attaches the matching
// habit store to the context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			sig     session.Signal = session.Static(true)
			profile                = s.opts.DefaultProfile
		)
		if s.opts.Sessions != nil {
			sess := s.opts.Sessions.FromRequest(r)
			sig, profile = sess, sess.Profile
		}

		profile = cmp.Or(profile, "default")

		st, err := s.host.Store(r.Context(), sig, profile)
		if errors.Is(err, app.ErrNoSession) {
			logger.Debug("Rejected request without session", "path", r.URL.Path)
			RecordSessionCheck("rejected")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err != nil {
			logger.Error("Failed to open habit store", "profile", profile, "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}
		RecordSessionCheck("accepted")

		ctx := context.WithValue(r.Context(), storeCtxKey{}, st)
		ctx = context.WithValue(ctx, profileCtxKey{}, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
