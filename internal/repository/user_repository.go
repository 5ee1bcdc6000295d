package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/models"
)

// UserRepository is the credential store.
type UserRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB, acquireTimeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: acquireTimeout}
}

// Create inserts a user. The UNIQUE constraint on email is the final arbiter
// of duplicates, so concurrent registrations cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a single user by their ID, including the password hash.
func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetByEmail retrieves a single user by their email, including the password hash.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
	return scanUser(row)
}

func scanUser(row scanner) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
