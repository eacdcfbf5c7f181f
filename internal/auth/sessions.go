package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"
	"household-ledger/internal/storage"

	"github.com/sirupsen/logrus"
)

const (
	// SessionLifetime is how long a session lasts without remember-me.
	SessionLifetime = 12 * time.Hour
	// RememberLifetime is how long a remember-me session lasts.
	RememberLifetime = 30 * 24 * time.Hour
)

// Manager issues, resolves and revokes session tokens. Expiry is judged by
// the database clock.
type Manager struct {
	db  *storage.DB
	log logrus.FieldLogger
}

// NewManager creates a session Manager.
func NewManager(db *storage.DB, log logrus.FieldLogger) *Manager {
	return &Manager{db: db, log: log}
}

// Lifetime returns the session lifetime for the remember flag.
func (m *Manager) Lifetime(remember bool) time.Duration {
	if remember {
		return RememberLifetime
	}
	return SessionLifetime
}

// Issue creates a session for userID.
func (m *Manager) Issue(ctx context.Context, userID int64, remember bool) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, apperrors.Storage("failed to generate session token", err)
	}
	s, err := m.db.CreateSession(ctx, token, userID, m.Lifetime(remember))
	if err != nil {
		return nil, apperrors.Storage("failed to create session", err)
	}
	m.log.WithFields(logrus.Fields{"user_id": userID, "expires_at": s.ExpiresAt}).Debug("session issued")
	return s, nil
}

// Resolve returns the user owning token. Empty, unknown and expired tokens
// yield ErrSessionInvalid.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.ErrSessionInvalid
	}
	user, err := m.db.ValidateSession(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSessionInvalid
	}
	if err != nil {
		return nil, apperrors.Storage("failed to resolve session", err)
	}
	return user, nil
}

// Revoke deletes the session. Revoking an unknown token is not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.db.DeleteSession(ctx, token); err != nil {
		return apperrors.Storage("failed to revoke session", err)
	}
	return nil
}

// PurgeExpired deletes expired session rows and returns how many were removed.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.db.CleanExpiredSessions(ctx)
	if err != nil {
		return 0, apperrors.Storage("failed to purge sessions", err)
	}
	return n, nil
}
