package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"household-ledger/internal/apperrors"
	"household-ledger/internal/models"
	"household-ledger/internal/storage"

	"github.com/sirupsen/logrus"
)

// CredentialStore hashes and verifies passwords and owns user records.
type CredentialStore struct {
	db     *storage.DB
	params Params
	log    logrus.FieldLogger

	// Checked against when the username is unknown.
	dummySalt string
	dummyHash string
}

// NewCredentialStore creates a CredentialStore hashing with params.
func NewCredentialStore(db *storage.DB, params Params, log logrus.FieldLogger) (*CredentialStore, error) {
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword("unused-password-0", salt, params)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{db: db, params: params, log: log, dummySalt: salt, dummyHash: hash}, nil
}

// CreateUser validates and stores a new user.
func (c *CredentialStore) CreateUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.Invalid("username is required")
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, apperrors.Storage("failed to generate salt", err)
	}
	hash, err := HashPassword(password, salt, c.params)
	if err != nil {
		return nil, apperrors.Storage("failed to hash password", err)
	}

	user, err := c.db.CreateUser(ctx, username, hash, salt, role)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, apperrors.ErrDuplicateUsername
	}
	if err != nil {
		return nil, apperrors.Storage("failed to create user", err)
	}

	c.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username, "role": user.Role}).Info("user created")
	return user, nil
}

// Verify returns the user whose username and password match. Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (c *CredentialStore) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.db.GetUserByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		CheckPassword(password, c.dummySalt, c.dummyHash)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load user", err)
	}
	if !CheckPassword(password, user.Salt, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// SeedAdmin creates the bootstrap admin unless a user with that name already
// exists. It reports whether a user was created.
func (c *CredentialStore) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := c.CreateUser(ctx, username, password, models.RoleAdmin)
	if errors.Is(err, apperrors.ErrDuplicateUsername) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListUsers returns all users ordered by id.
func (c *CredentialStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := c.db.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.Storage("failed to list users", err)
	}
	return users, nil
}

// GetUser returns one user by id.
func (c *CredentialStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := c.db.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", id)
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load user", err)
	}
	return user, nil
}
