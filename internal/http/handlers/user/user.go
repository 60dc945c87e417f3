// Package user contains the HTTP handlers for the User resource.
//
// Each exported function is a factory: it receives the store once at
// route registration and returns the http.HandlerFunc invoked on every
// request.
package user

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
	msgNotFound = "User not found"
	msgConflict = "User already exists"
	msgDeleted  = "User deleted successfully"
)

// DeleteResult is the body returned by DELETE /users/{id}.
type DeleteResult struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

// GetList handles GET /users.
func GetList(users storage.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all users")

		list, err := users.ListUsers(r.Context())
		if err != nil {
			slog.Error("error getting users", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, list)
	}
}

// GetByID handles GET /users/{id}. A missing user is a 404.
func GetByID(users storage.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("getting a user", slog.Int64("id", id))

		u, err := users.GetUser(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, u)
	}
}

// New handles POST /users.
//
//	{ "name": "Alice", "email": "a@x.com" }
//
// 201 with the created user, 409 when the email is already taken.
func New(users storage.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a user")

		var in types.UserInput
		if !request.Bind(w, r, &in) {
			return
		}

		u, err := users.CreateUser(r.Context(), in)
		if err != nil {
			slog.Error("error creating user", slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("user created", slog.Int64("id", u.ID))
		response.WriteJSON(w, http.StatusCreated, u)
	}
}

// Update handles PUT /users/{id}. Both name and email are replaced; a body
// missing either one is rejected before reaching the store.
func Update(users storage.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("updating a user", slog.Int64("id", id))

		var in types.UserInput
		if !request.Bind(w, r, &in) {
			return
		}

		u, err := users.UpdateUser(r.Context(), id, in)
		if err != nil {
			slog.Error("error updating user",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeStoreError(w, err)
			return
		}

		slog.Info("user updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, u)
	}
}

// Delete handles DELETE /users/{id}.
func Delete(users storage.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("deleting a user", slog.Int64("id", id))

		u, err := users.DeleteUser(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		slog.Info("user deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, DeleteResult{Message: msgDeleted, User: u})
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.Error(msgNotFound))
	case errors.Is(err, storage.ErrDuplicateEmail):
		response.WriteJSON(w, http.StatusConflict, response.Error(msgConflict))
	default:
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
