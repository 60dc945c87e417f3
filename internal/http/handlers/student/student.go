// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN: closure / factory.
// Go's router expects func(http.ResponseWriter, *http.Request), which has
// no room for a database. Each exported function accepts the store and
// returns a handler that closes over it:
//
//	router.HandleFunc("POST /students", student.New(store))
//	//                                    New(store) runs ONCE at startup;
//	//                                    the returned func runs per request.
package student

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/roster-api/internal/storage"
	"github.com/aanand-mishra/roster-api/internal/types"
	"github.com/aanand-mishra/roster-api/internal/utils/request"
	"github.com/aanand-mishra/roster-api/internal/utils/response"
)

const (
	msgNotFound = "Student not found"
	msgDeleted  = "Student deleted successfully"
)

// DeleteResult is the body returned by DELETE /students/{id}.
type DeleteResult struct {
	Message string        `json:"message"`
	Student types.Student `json:"student"`
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body:
//
//	{ "studentName": "Rakesh", "courseName": "Maths" }
//
// Success response (201 Created): the stored student, including its
// generated studentId.
//
// Error responses:
//
//	400 Bad Request  empty body, malformed JSON, or failed validation
//	500 Internal     database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(students storage.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var in types.StudentInput
		if !request.Bind(w, r, &in) {
			return
		}

		st, err := students.CreateStudent(r.Context(), in)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", st.StudentID))
		response.WriteJSON(w, http.StatusCreated, st)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// NewBulk handles POST /students/bulk
//
// Request body: a JSON array of student inputs.
//
//	[ { "studentName": "A", "courseName": "X" },
//	  { "studentName": "B", "courseName": "Y" } ]
//
// Success response (201 Created): the created students in input order.
// A failing insert turns the whole response into a 500; whether the
// siblings that already succeeded stay committed depends on the store's
// atomic_bulk setting.
// ─────────────────────────────────────────────────────────────────────────────
func NewBulk(students storage.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var batch []types.StudentInput
		if err := request.DecodeJSON(r, &batch); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := request.Validate(types.StudentBatch{Items: batch}); err != nil {
			request.WriteInvalid(w, err)
			return
		}

		slog.Info("creating students in bulk", slog.Int("count", len(batch)))

		created, err := students.CreateStudents(r.Context(), batch)
		if err != nil {
			slog.Error("error creating students in bulk", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// Error responses:
//
//	400 Bad Request  id is not a positive integer
//	404 Not Found    no student with that id
//	500 Internal     database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(students storage.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		st, err := students.GetStudent(r.Context(), id)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				slog.Error("error getting student",
					slog.Int64("id", id),
					slog.String("error", err.Error()))
			}
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, st)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students
// Returns [] (not null) when there are no students.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(students storage.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		list, err := students.ListStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}
// Replaces BOTH mutable fields. A body that leaves either one out is a 400
// and the stored record is not touched.
//
// Error responses:
//
//	400 Bad Request  invalid id, empty body, or validation failure
//	404 Not Found    no student with that id
//	500 Internal     database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(students storage.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var in types.StudentInput
		if !request.Bind(w, r, &in) {
			return
		}

		st, err := students.UpdateStudent(r.Context(), id, in)
		if err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, st)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{id}
//
// Success response (200 OK):
//
//	{ "message": "Student deleted successfully", "student": { ... } }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(students storage.StudentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		st, err := students.DeleteStudent(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, DeleteResult{Message: msgDeleted, Student: st})
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.Error(msgNotFound))
		return
	}
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
