package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vbonduro/stayhaven/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const userColumns = `id, first_name, last_name, username, email, hashed_password, bio, created_at, updated_at`

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, username, email, hashed_password, bio)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.FirstName, u.LastName, u.Username, u.Email, u.HashedPassword, u.Bio)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user %q already exists: %w", u.Username, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := s.db.GetContext(ctx, user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindTaken returns the users already holding username or email.
func (s *UserStore) FindTaken(ctx context.Context, username, email string) ([]*domain.User, error) {
	var users []*domain.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users
		WHERE username = ? COLLATE NOCASE OR email = ? COLLATE NOCASE
	`, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	return users, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, u *domain.User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, email = ?, bio = ?, updated_at = datetime('now')
		WHERE id = ?
	`, u.FirstName, u.LastName, u.Email, u.Bio, u.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("email already in use: %w", domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(result, "user")
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET hashed_password = ?, updated_at = datetime('now') WHERE id = ?
	`, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOneRow(result, "user")
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(result, "user")
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// expectOneRow turns a zero-row UPDATE or DELETE into a wrapped ErrNotFound.
func expectOneRow(result sql.Result, noun string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %w", noun, domain.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
