package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tunemart/model"
)

// ErrDuplicateUser is returned when a username or email is already taken.
var ErrDuplicateUser = errors.New("username or email already exists")

// UserRepository defines the interface for account persistence.
// FindByUsername returns (nil, nil) when no account exists.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (int64, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQL-backed user repository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

// Create inserts a new account and returns its assigned id.
func (r *mysqlUserRepository) Create(ctx context.Context, u *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, u.Username, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// FindByUsername retrieves an account by username.
func (r *mysqlUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM users WHERE username = ?`
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user %s: %w", username, err)
	}
	return u, nil
}
