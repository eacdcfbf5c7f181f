package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/policy"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// RequestLogger assigns every request a trace id, stores a logger carrying it
// in the request context and logs the outcome.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get(TraceHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceHeader, traceID)

		entry := h.log.WithField("trace_id", traceID)
		ctx := context.WithValue(r.Context(), LoggerContextKey, logrus.FieldLogger(entry))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		entry.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

// Authenticate resolves the session token, if any, and puts the user in the
// request context. Requests without a valid session continue anonymously.
func (h *Handlers) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.sessions.Resolve(r.Context(), token)
		switch {
		case err == nil:
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			r = r.WithContext(ctx)
		case errors.Is(err, apperrors.ErrUnauthenticated):
			// Invalid or expired session, clear the cookie
			if _, cookieErr := r.Cookie(SessionCookieName); cookieErr == nil {
				h.clearSessionCookie(w)
			}
		default:
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require allows the request through only for an authenticated user whose
// role may perform op.
func (h *Handlers) Require(op policy.Operation, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			h.writeError(w, r, apperrors.ErrSessionInvalid)
			return
		}
		if !policy.Allowed(user.Role, op) {
			h.logger(r.Context()).WithFields(logrus.Fields{
				"user_id":   user.ID,
				"role":      user.Role,
				"operation": op,
			}).Info("access denied")
			h.writeError(w, r, apperrors.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
