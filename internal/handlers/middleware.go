package handlers

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"postboard/internal/app"
)

type ctxKey int

const sessionKey ctxKey = iota

// WithRecover recovers from handler panics and answers 500 instead of
// crashing the server.
func WithRecover(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(logrus.Fields{
						"panic":  rec,
						"method": r.Method,
						"path":   r.URL.Path,
						"stack":  string(debug.Stack()),
					}).Error("recovered from panic")
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start),
				"remote":     r.RemoteAddr,
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}

// WithSession makes sure every request carries a live session, issuing a
// new one when the cookie is missing or expired.
func (h *Handler) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.sessions.Current(r)
		if !ok {
			var err error
			id, err = h.sessions.Create(w)
			if err != nil {
				h.log.WithError(err).Error("create session")
				http.Error(w, "session error", http.StatusInternalServerError)
				return
			}
			h.log.WithField("session", id).Debug("session created")
		}
		ctx := context.WithValue(r.Context(), sessionKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth sends visitors without a current username back to the login page.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := app.SelectCurrentUsername(h.storeFor(r).GetState()); !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey).(string)
	return id
}

func (h *Handler) storeFor(r *http.Request) *app.Store {
	return h.registry.Get(sessionID(r))
}
