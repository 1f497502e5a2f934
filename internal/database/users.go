// users.go handles user-related database operations.
package database

import (
	"context"
	"fmt"

	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

// CreateUser inserts a new user record. It returns ErrEmailTaken when the
// email is already registered.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, mode, current_page, created_at`

	err := db.QueryRowContext(ctx, query, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.Mode, &u.CurrentPage, &u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address (case-insensitive).
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, `SELECT * FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// SaveSession persists the session's mode and page on the user row.
func (db *DB) SaveSession(ctx context.Context, s *models.Session) error {
	if s.User == nil {
		return fmt.Errorf("session has no user")
	}
	_, err := db.ExecContext(ctx,
		`UPDATE users SET mode = $2, current_page = $3 WHERE id = $1`,
		s.User.ID, string(s.Mode), string(s.Page))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.User.Mode = string(s.Mode)
	s.User.CurrentPage = string(s.Page)
	return nil
}
