package handlers

import (
	"net/http"
	"strings"
	"time"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"

	"github.com/0xcafe-io/iz"
	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

// Login verifies credentials, issues a session and sets the session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		h.writeError(w, r, apperrors.Invalid("username and password are required"))
		return
	}

	user, err := h.creds.Verify(r.Context(), username, req.Password)
	if err != nil {
		h.logger(r.Context()).WithField("username", username).Info("login failed")
		h.writeError(w, r, err)
		return
	}

	session, err := h.sessions.Issue(r.Context(), user.ID, req.Remember)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, session.Token, req.Remember)
	h.logger(r.Context()).WithFields(logrus.Fields{"user_id": user.ID, "remember": req.Remember}).Info("login succeeded")
	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

// Logout revokes the current session, if any, and clears the cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			h.logger(r.Context()).WithError(err).Error("failed to delete session")
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Register rejects public self-registration. Accounts are created by an
// admin.
func (h *Handlers) Register(r *iz.Request) iz.Responder {
	return h.fail(r, apperrors.ErrRegistrationDisabled)
}

// Me reports the user behind the current session.
func (h *Handlers) Me(r *iz.Request) iz.Responder {
	user := GetUserFromContext(r.Context())
	if user == nil {
		return iz.Respond().Status(http.StatusUnauthorized).JSON(meResponse{Authenticated: false})
	}
	return iz.Respond().Status(http.StatusOK).JSON(meResponse{Authenticated: true, User: user})
}
