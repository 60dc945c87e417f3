// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, client and utils can all import types without
// depending on each other.
package types

// User is a person managed through the /users resource.
// Email is unique across all users.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Key returns the primary key of the user.
func (u User) Key() int64 { return u.ID }

// Student is a course enrolment managed through the /students resource.
type Student struct {
	StudentID   int64  `json:"studentId"`
	StudentName string `json:"studentName"`
	CourseName  string `json:"courseName"`
}

// Key returns the primary key of the student.
func (s Student) Key() int64 { return s.StudentID }

// UserInput is the body accepted by POST /users and PUT /users/{id}.
// Both fields are always replaced on update.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     controls how the field appears when encoded to JSON.
//  2. validate:"..." rules checked by the go-playground/validator package.
//     "required" means the field must be non-zero / non-empty.
type UserInput struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// StudentInput is the body accepted by POST /students, PUT /students/{id}
// and, as array items, by POST /students/bulk.
type StudentInput struct {
	StudentName string `json:"studentName" validate:"required"`
	CourseName  string `json:"courseName"  validate:"required"`
}

// StudentBatch wraps a bulk payload so the validator can dive into each item.
type StudentBatch struct {
	Items []StudentInput `validate:"dive"`
}
