package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/age-wisdom/internal/apperror"
	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new account. The UNIQUE constraint on username is the
// authority on name collisions — checking first and inserting second would
// leave a race window between the two statements.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at, updated_at, is_active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("username", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no active user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

// GetUserByUsername retrieves a user by exact username match.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `username = ?`, username)
}

func (db *DB) getUser(ctx context.Context, where string, arg string) (*model.User, error) {
	var (
		u         model.User
		lastLogin sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, updated_at, last_login_at, is_active
		 FROM users WHERE `+where+` AND is_active = 1`,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLogin,
		&u.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", arg, err)
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}

	return &u, nil
}

// TouchLastLogin stamps last_login_at, the only mutable field besides
// is_active on a user row.
func (db *DB) TouchLastLogin(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching last login for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// usernameTaken is used by tests; exact-match lookup without the is_active
// filter, since a deactivated account still reserves its name.
func (db *DB) usernameTaken(ctx context.Context, username string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username,
	).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: checking username %q: %w", username, err)
	}
	return true, nil
}
