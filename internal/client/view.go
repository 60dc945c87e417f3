package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/aanand-mishra/roster-api/internal/types"
)

// ErrNotAuthenticated is returned by Load on a view that must be
// authenticated first.
var ErrNotAuthenticated = errors.New("not authenticated")

// State is the lifecycle of a View.
type State int

const (
	Idle State = iota
	Authenticated
	Loaded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Authenticated:
		return "authenticated"
	case Loaded:
		return "loaded"
	}
	return "unknown"
}

// Keyed is any record with an integer primary key.
type Keyed interface {
	Key() int64
}

// Resource is the server-side collection behind a View.
type Resource[T Keyed, In any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, in In) (T, error)
	Delete(ctx context.Context, id int64) error
}

// FormError is the inline error shown next to a create or update form.
type FormError struct {
	Failed  bool
	Message string
}

// Messages are the inline texts a view shows for form failures.
type Messages struct {
	CreateRequired string
	UpdateRequired string
	Conflict       string
	NotLoggedIn    string
}

// View mirrors one resource list in memory.
//
// Load fetches the whole list once. Create, Update and Delete apply their
// change to the local copy after the server accepts it and never refetch,
// so edits made by other sessions stay invisible until the next Load.
// Create and Update failures are kept as FormErrors; Load and Delete
// failures are only logged.
type View[T Keyed, In any] struct {
	res         Resource[T, In]
	tokens      TokenSource
	requireAuth bool
	missing     func(In) bool
	msgs        Messages
	log         *slog.Logger

	mu        sync.Mutex
	state     State
	items     []T
	createErr FormError
	updateErr FormError
}

// NewUserView returns a view over /users. It needs no login.
func NewUserView(c *Client, log *slog.Logger) *View[types.User, types.UserInput] {
	return &View[types.User, types.UserInput]{
		res: userResource{c},
		missing: func(in types.UserInput) bool {
			return blank(in.Name) || blank(in.Email)
		},
		msgs: Messages{
			CreateRequired: "Name and Email are required.",
			UpdateRequired: "ID, Name, and Email are required.",
			Conflict:       "User already exists.",
		},
		log: orDefault(log),
	}
}

// NewStudentView returns a view over /students. It must be authenticated
// through c's token source before it can load.
func NewStudentView(c *Client, log *slog.Logger) *View[types.Student, types.StudentInput] {
	return &View[types.Student, types.StudentInput]{
		res:         studentResource{c},
		tokens:      c.Tokens(),
		requireAuth: true,
		missing: func(in types.StudentInput) bool {
			return blank(in.StudentName) || blank(in.CourseName)
		},
		msgs: Messages{
			CreateRequired: "Student Name and Course Name are required.",
			UpdateRequired: "ID, Student Name, and Course Name are required.",
			NotLoggedIn:    "Please log in first.",
		},
		log: orDefault(log),
	}
}

// State returns the current lifecycle state.
func (v *View[T, In]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Items returns a copy of the local list, newest first.
func (v *View[T, In]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.items)
}

// CreateError returns the inline error of the last Create.
func (v *View[T, In]) CreateError() FormError {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.createErr
}

// UpdateError returns the inline error of the last Update.
func (v *View[T, In]) UpdateError() FormError {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.updateErr
}

// Authenticate obtains a token to confirm the login and moves an Idle
// view to Authenticated.
func (v *View[T, In]) Authenticate(ctx context.Context) error {
	if v.tokens == nil {
		return ErrNotAuthenticated
	}
	if _, err := v.tokens.Token(ctx); err != nil {
		return errors.Join(ErrNotAuthenticated, err)
	}

	v.mu.Lock()
	if v.state == Idle {
		v.state = Authenticated
	}
	v.mu.Unlock()

	return nil
}

// Load fetches the full list and stores it newest first. Fetch errors are
// logged and leave the view untouched; only the auth gate is reported.
func (v *View[T, In]) Load(ctx context.Context) error {
	if !v.authorized() {
		return ErrNotAuthenticated
	}

	list, err := v.res.List(ctx)
	if err != nil {
		v.log.Error("error fetching list", slog.String("error", err.Error()))
		return nil
	}

	slices.Reverse(list)

	v.mu.Lock()
	v.items = list
	v.state = Loaded
	v.mu.Unlock()

	return nil
}

// Create validates in, sends it, and prepends the created record.
// It reports whether the record was created; on failure CreateError holds
// the reason.
func (v *View[T, In]) Create(ctx context.Context, in In) bool {
	v.setCreateErr(FormError{})

	if !v.authorized() {
		v.setCreateErr(FormError{Failed: true, Message: v.msgs.NotLoggedIn})
		return false
	}
	if v.missing(in) {
		v.setCreateErr(FormError{Failed: true, Message: v.msgs.CreateRequired})
		return false
	}

	created, err := v.res.Create(ctx, in)
	if err != nil {
		v.log.Error("error creating record", slog.String("error", err.Error()))
		v.setCreateErr(FormError{Failed: true, Message: v.failureMessage(err)})
		return false
	}

	v.mu.Lock()
	v.items = append([]T{created}, v.items...)
	v.mu.Unlock()

	return true
}

// Update validates in, sends it, and replaces the element with the same
// id by the server's response. It reports whether the update succeeded;
// on failure UpdateError holds the reason.
func (v *View[T, In]) Update(ctx context.Context, id int64, in In) bool {
	v.setUpdateErr(FormError{})

	if !v.authorized() {
		v.setUpdateErr(FormError{Failed: true, Message: v.msgs.NotLoggedIn})
		return false
	}
	if id <= 0 || v.missing(in) {
		v.setUpdateErr(FormError{Failed: true, Message: v.msgs.UpdateRequired})
		return false
	}

	updated, err := v.res.Update(ctx, id, in)
	if err != nil {
		v.log.Error("error updating record",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		v.setUpdateErr(FormError{Failed: true, Message: v.failureMessage(err)})
		return false
	}

	v.mu.Lock()
	for i := range v.items {
		if v.items[i].Key() == id {
			v.items[i] = updated
		}
	}
	v.mu.Unlock()

	return true
}

// Delete removes the record on the server and then from the local list.
// Failures are only logged.
func (v *View[T, In]) Delete(ctx context.Context, id int64) {
	if !v.authorized() {
		v.log.Error("error deleting record",
			slog.Int64("id", id),
			slog.String("error", ErrNotAuthenticated.Error()))
		return
	}

	if err := v.res.Delete(ctx, id); err != nil {
		v.log.Error("error deleting record",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		return
	}

	v.mu.Lock()
	v.items = slices.DeleteFunc(v.items, func(item T) bool { return item.Key() == id })
	v.mu.Unlock()
}

func (v *View[T, In]) authorized() bool {
	if !v.requireAuth {
		return true
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state != Idle
}

func (v *View[T, In]) failureMessage(err error) string {
	if StatusCode(err) == http.StatusConflict && v.msgs.Conflict != "" {
		return v.msgs.Conflict
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return err.Error()
}

func (v *View[T, In]) setCreateErr(fe FormError) {
	v.mu.Lock()
	v.createErr = fe
	v.mu.Unlock()
}

func (v *View[T, In]) setUpdateErr(fe FormError) {
	v.mu.Lock()
	v.updateErr = fe
	v.mu.Unlock()
}

type userResource struct{ c *Client }

func (r userResource) List(ctx context.Context) ([]types.User, error) {
	return r.c.ListUsers(ctx)
}

func (r userResource) Create(ctx context.Context, in types.UserInput) (types.User, error) {
	return r.c.CreateUser(ctx, in)
}

func (r userResource) Update(ctx context.Context, id int64, in types.UserInput) (types.User, error) {
	return r.c.UpdateUser(ctx, id, in)
}

func (r userResource) Delete(ctx context.Context, id int64) error {
	_, err := r.c.DeleteUser(ctx, id)
	return err
}

type studentResource struct{ c *Client }

func (r studentResource) List(ctx context.Context) ([]types.Student, error) {
	return r.c.ListStudents(ctx)
}

func (r studentResource) Create(ctx context.Context, in types.StudentInput) (types.Student, error) {
	return r.c.CreateStudent(ctx, in)
}

func (r studentResource) Update(ctx context.Context, id int64, in types.StudentInput) (types.Student, error) {
	return r.c.UpdateStudent(ctx, id, in)
}

func (r studentResource) Delete(ctx context.Context, id int64) error {
	_, err := r.c.DeleteStudent(ctx, id)
	return err
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
