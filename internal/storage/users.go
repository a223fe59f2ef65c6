package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/keepitall/keepitall/internal/common"
	"github.com/keepitall/keepitall/internal/model"
)

// CreateUser registers a new owner. Names are unique; a collision returns
// ErrDuplicateEntry.
func (s *SQLiteStorage) CreateUser(ctx context.Context, name string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	existing, err := s.GetUserByName(ctx, name)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user %q", common.ErrDuplicateEntry, name)
	}

	id := uuid.NewString()
	if _, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES (?, ?)`, id, name); err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", name, err)
	}

	return s.GetUserByName(ctx, name)
}

// GetUserByName looks up an owner by username.
func (s *SQLiteStorage) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE name = ?`, name).
		Scan(&user.ID, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", name, err)
	}

	return &user, nil
}

// GetAllUsers lists every registered owner.
func (s *SQLiteStorage) GetAllUsers(ctx context.Context) ([]model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		var user model.User
		if scanErr := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan user: %w", scanErr)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// DeleteUser removes an owner and all of their items.
func (s *SQLiteStorage) DeleteUser(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	user, err := s.GetUserByName(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM items WHERE owner_id = ?`, user.ID); err != nil {
		return fmt.Errorf("failed to delete items for user %q: %w", name, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, user.ID); err != nil {
		return fmt.Errorf("failed to delete user %q: %w", name, err)
	}

	return tx.Commit()
}
