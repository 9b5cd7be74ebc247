package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, active, password_changed_at, created_at, updated_at`

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// GetOrCreate inserts the user unless the email is already registered and returns the stored row.
// Concurrent first requests for the same email converge on one row through the unique email constraint.
func (r *UserRepository) GetOrCreate(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	const insert = `INSERT INTO users (id, email, password_hash, first_name, last_name, role, active, password_changed_at, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :first_name, :last_name, :role, :active, :password_changed_at, :created_at, :updated_at)
        ON CONFLICT (email) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, insert, user); err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	return r.FindByEmail(ctx, user.Email)
}

// UpdatePassword stores a new password hash and stamps password_changed_at.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, password_changed_at = $3, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ResetPassword replaces the password hash with an issued credential. password_changed_at is cleared
// because the user has not chosen this password.
func (r *UserRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, password_changed_at = NULL, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, time.Now().UTC()); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
