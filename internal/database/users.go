package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docsum/internal/domain"
)

// ErrUserExists is returned when creating a user whose email is taken.
var ErrUserExists = errors.New("user already exists")

// UserByEmail returns nil without error when no user has that email.
func (d *Database) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `select id, email, name, password_hash, provider, created_at
	from users
	where email = ?`

	var (
		u         domain.User
		createdAt string
	)

	err := d.db.QueryRowContext(ctx, query, normalizeEmail(email)).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Provider,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // Absence is not an error here.
	}
	if err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}

	return &u, nil
}

func (d *Database) CreateUser(ctx context.Context, u domain.User) error {
	email := normalizeEmail(u.Email)
	if email == "" {
		return errors.New("user email is empty")
	}

	createdAt, err := formatTime(u.CreatedAt)
	if err != nil {
		return fmt.Errorf("format created at: %w", err)
	}

	query := `insert or ignore into users (id, email, name, password_hash, provider, created_at)
	values (?, ?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		u.ID,
		email,
		strings.TrimSpace(u.Name),
		u.PasswordHash,
		u.Provider,
		createdAt,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return ErrUserExists
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
