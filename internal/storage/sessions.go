package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"household-ledger/internal/models"
)

// All session timestamps come from SQLite's clock so that every caller
// compares against the same "now", whatever the clock of the process.

// CreateSession stores a session for userID that expires ttl from now.
func (db *DB) CreateSession(ctx context.Context, token string, userID int64, ttl time.Duration) (*models.Session, error) {
	s := models.Session{Token: token, UserID: userID}

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (token, user_id, created_at, expires_at)
			VALUES (?, ?, datetime('now'), datetime('now', ?))`,
			token, userID, expiryModifier(ttl),
		); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			"SELECT created_at, expires_at FROM sessions WHERE token = ?",
			token,
		).Scan(&s.CreatedAt, &s.ExpiresAt)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func expiryModifier(ttl time.Duration) string {
	return fmt.Sprintf("+%d seconds", int64(ttl/time.Second))
}

// ValidateSession returns the user owning an unexpired session. Expired and
// unknown tokens both yield sql.ErrNoRows.
func (db *DB) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.password_hash, u.salt, u.role, u.created_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > datetime('now')
	`, token)
	return scanUser(row)
}

// DeleteSession removes a session by token. Deleting an unknown token is not
// an error.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions and returns how many were
// removed.
func (db *DB) CleanExpiredSessions(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= datetime('now')")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
