// Package response provides helpers for writing consistent JSON HTTP
// responses. Every handler sends JSON back to the client; the helpers keep
// the header/status/body order and the error envelope in one place.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope returned for error cases.
//
// Success responses may return any JSON shape (a user, a list, ...).
// Error responses always look like:
//
//	{ "status": "error", "message": "field Name is required" }
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Order matters: Header() -> WriteHeader() -> body writes. Once
// WriteHeader is called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
// Used for unexpected errors (DB failures, decode errors, etc.).
func GeneralError(err error) Response {
	if err == nil {
		return Error("Internal Server Error")
	}
	return Error(err.Error())
}

// Error builds an error Response with a fixed message.
func Error(msg string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
	}
}

// ValidationError converts validator field errors into one readable
// Response, joining the per-field sentences with ", ".
//
//	{ "status": "error", "message": "field name is required, field email must be a valid email address" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error(strings.Join(errMessages, ", "))
}
