package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/roster-api/internal/storage"
	"github.com/aanand-mishra/roster-api/internal/types"
)

// Explicit column list; never SELECT * so Scan ordering cannot drift.
const userColumns = "id, name, email"

func scanUser(row rowScanner) (types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Name, &u.Email)
	return u, err
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("ListUsers: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	users := make([]types.User, 0)

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers: scan row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: rows iteration: %w", err)
	}

	return users, nil
}

// GetUser fetches exactly one user matched by primary key.
func (s *Store) GetUser(ctx context.Context, id int64) (types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, fmt.Errorf("GetUser: id %d: %w", id, storage.ErrNotFound)
		}
		return types.User{}, fmt.Errorf("GetUser: scan: %w", err)
	}

	return u, nil
}

// GetUserByEmail fetches the user owning email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, fmt.Errorf("GetUserByEmail: %w", storage.ErrNotFound)
		}
		return types.User{}, fmt.Errorf("GetUserByEmail: scan: %w", err)
	}

	return u, nil
}

// CreateUser checks that the email is free, then inserts the user.
// Two concurrent creates with the same email can both pass the lookup;
// the UNIQUE constraint rejects the second insert.
func (s *Store) CreateUser(ctx context.Context, in types.UserInput) (types.User, error) {
	_, err := s.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return types.User{}, fmt.Errorf("CreateUser: %w", storage.ErrDuplicateEmail)
	case !errors.Is(err, storage.ErrNotFound):
		return types.User{}, fmt.Errorf("CreateUser: lookup email: %w", err)
	}

	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind("INSERT INTO users (name, email) VALUES (?, ?) RETURNING "+userColumns),
		in.Name, in.Email))
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return types.User{}, fmt.Errorf("CreateUser: %w", storage.ErrDuplicateEmail)
		}
		return types.User{}, fmt.Errorf("CreateUser: insert: %w", err)
	}

	return u, nil
}

// UpdateUser replaces name and email and returns the stored row.
func (s *Store) UpdateUser(ctx context.Context, id int64, in types.UserInput) (types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind("UPDATE users SET name = ?, email = ? WHERE id = ? RETURNING "+userColumns),
		in.Name, in.Email, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return types.User{}, fmt.Errorf("UpdateUser: id %d: %w", id, storage.ErrNotFound)
		case s.dialect.IsUniqueViolation(err):
			return types.User{}, fmt.Errorf("UpdateUser: %w", storage.ErrDuplicateEmail)
		}
		return types.User{}, fmt.Errorf("UpdateUser: exec: %w", err)
	}

	return u, nil
}

// DeleteUser removes a user by primary key and returns the removed row.
func (s *Store) DeleteUser(ctx context.Context, id int64) (types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind("DELETE FROM users WHERE id = ? RETURNING "+userColumns), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, fmt.Errorf("DeleteUser: id %d: %w", id, storage.ErrNotFound)
		}
		return types.User{}, fmt.Errorf("DeleteUser: exec: %w", err)
	}

	return u, nil
}
