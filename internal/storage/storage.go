// Package storage defines the data-access contract that any database
// backend must satisfy to work with this application.
//
// Handlers depend only on these interfaces, never on a concrete driver.
// Switching databases means implementing the interfaces for the new
// backend and changing the constructor called in main.go.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/roster-api/internal/types"
)

var (
	// ErrNotFound is returned when no record matches the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a user with the same email
	// already exists.
	ErrDuplicateEmail = errors.New("user already exists")
)

// UserStore is the data-access contract for users.
type UserStore interface {
	// ListUsers returns every user ordered by id. Returns an empty slice
	// (not nil) if there are none.
	ListUsers(ctx context.Context) ([]types.User, error)

	// GetUser fetches a single user by primary key, or ErrNotFound.
	GetUser(ctx context.Context, id int64) (types.User, error)

	// GetUserByEmail fetches a single user by email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (types.User, error)

	// CreateUser inserts a new user and returns it with its generated id.
	// Returns ErrDuplicateEmail if the email is taken.
	CreateUser(ctx context.Context, in types.UserInput) (types.User, error)

	// UpdateUser replaces name and email of an existing user.
	// Returns ErrNotFound or ErrDuplicateEmail.
	UpdateUser(ctx context.Context, id int64, in types.UserInput) (types.User, error)

	// DeleteUser removes a user and returns the deleted record, or
	// ErrNotFound without touching the store.
	DeleteUser(ctx context.Context, id int64) (types.User, error)
}

// StudentStore is the data-access contract for students.
type StudentStore interface {
	// ListStudents returns every student ordered by id. Returns an empty
	// slice (not nil) if there are none.
	ListStudents(ctx context.Context) ([]types.Student, error)

	// GetStudent fetches a single student by primary key, or ErrNotFound.
	GetStudent(ctx context.Context, id int64) (types.Student, error)

	// CreateStudent inserts a new student and returns it with its
	// generated id.
	CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error)

	// CreateStudents inserts every input concurrently and returns the
	// created students in input order. Whether a failure rolls back the
	// members that already succeeded depends on the backend configuration.
	CreateStudents(ctx context.Context, in []types.StudentInput) ([]types.Student, error)

	// UpdateStudent replaces both mutable fields of an existing student,
	// or returns ErrNotFound.
	UpdateStudent(ctx context.Context, id int64, in types.StudentInput) (types.Student, error)

	// DeleteStudent removes a student and returns the deleted record, or
	// ErrNotFound without touching the store.
	DeleteStudent(ctx context.Context, id int64) (types.Student, error)
}

// Storage is the full database contract used by the HTTP layer.
type Storage interface {
	UserStore
	StudentStore

	// Close releases the underlying connection pool.
	Close() error
}
