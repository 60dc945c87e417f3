// Package request holds the decoding, validation and path-parameter
// helpers shared by every handler.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/roster-api/internal/utils/response"
)

var (
	// ErrEmptyBody is returned when the request carries no body at all.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrInvalidID is returned when the {id} path segment is not a
	// positive integer.
	ErrInvalidID = errors.New("invalid id: must be a positive integer")
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report field names the way clients send them: "studentName", not
	// "StudentName".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	return v
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// Validate checks every validate:"..." tag on v.
func Validate(v any) error {
	return validate.Struct(v)
}

// ParseID extracts the {id} path value as a positive int64.
func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// Bind decodes the body into v and validates it. On failure it writes a
// 400 response and returns false; the caller just returns.
func Bind(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := Validate(v); err != nil {
		WriteInvalid(w, err)
		return false
	}

	return true
}

// WriteInvalid writes a 400 for a validation failure.
func WriteInvalid(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
		return
	}
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}
