package handlers

import (
	"context"
	"net/http"
	"strings"

	"household-ledger/internal/auth"
	"household-ledger/internal/ledger"
	"household-ledger/internal/models"

	"github.com/sirupsen/logrus"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// LoggerContextKey is the context key for the request scoped logger.
	LoggerContextKey contextKey = "logger"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// TraceHeader carries the request trace id.
	TraceHeader = "X-Request-ID"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	creds        *auth.CredentialStore
	sessions     *auth.Manager
	ledger       *ledger.Service
	log          logrus.FieldLogger
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(creds *auth.CredentialStore, sessions *auth.Manager, ledger *ledger.Service, log logrus.FieldLogger, secureCookie bool) *Handlers {
	return &Handlers{
		creds:        creds,
		sessions:     sessions,
		ledger:       ledger,
		log:          log,
		secureCookie: secureCookie,
	}
}

// GetUserFromContext retrieves the authenticated user from a request context.
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// logger returns the request scoped logger, or the base logger outside a
// request.
func (h *Handlers) logger(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(LoggerContextKey).(logrus.FieldLogger); ok {
		return l
	}
	return h.log
}

// sessionToken reads the session token from the cookie, falling back to an
// Authorization: Bearer header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if v := r.Header.Get("Authorization"); v != "" {
		scheme, token, ok := strings.Cut(v, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	// Without remember-me the cookie lives for the browser session only.
	if remember {
		cookie.MaxAge = int(h.sessions.Lifetime(true).Seconds())
	}
	http.SetCookie(w, cookie)
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
