package client

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/roster-api/internal/types"
)

// fakeUsers is an in-memory Resource. Each err field, when set, is
// returned by the matching method.
type fakeUsers struct {
	list      []types.User
	nextID    int64
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	calls     int
}

func (f *fakeUsers) List(context.Context) ([]types.User, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]types.User(nil), f.list...), nil
}

func (f *fakeUsers) Create(_ context.Context, in types.UserInput) (types.User, error) {
	f.calls++
	if f.createErr != nil {
		return types.User{}, f.createErr
	}
	f.nextID++
	u := types.User{ID: f.nextID, Name: in.Name, Email: in.Email}
	f.list = append(f.list, u)
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, in types.UserInput) (types.User, error) {
	f.calls++
	if f.updateErr != nil {
		return types.User{}, f.updateErr
	}
	return types.User{ID: id, Name: in.Name, Email: in.Email}, nil
}

func (f *fakeUsers) Delete(context.Context, int64) error {
	f.calls++
	return f.deleteErr
}

func newTestView(res *fakeUsers, requireAuth bool, tokens TokenSource, logBuf *bytes.Buffer) *View[types.User, types.UserInput] {
	return &View[types.User, types.UserInput]{
		res:         res,
		tokens:      tokens,
		requireAuth: requireAuth,
		missing: func(in types.UserInput) bool {
			return blank(in.Name) || blank(in.Email)
		},
		msgs: Messages{
			CreateRequired: "Name and Email are required.",
			UpdateRequired: "ID, Name, and Email are required.",
			Conflict:       "User already exists.",
			NotLoggedIn:    "Please log in first.",
		},
		log: slog.New(slog.NewTextHandler(logBuf, nil)),
	}
}

func TestView_LoadIsNewestFirst(t *testing.T) {
	res := &fakeUsers{list: []types.User{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}}
	v := newTestView(res, false, nil, &bytes.Buffer{})

	require.NoError(t, v.Load(context.Background()))

	assert.Equal(t, Loaded, v.State())
	assert.Equal(t, []int64{3, 2, 1}, keys(v.Items()))
}

func TestView_LoadFailureIsOnlyLogged(t *testing.T) {
	var logs bytes.Buffer
	res := &fakeUsers{listErr: errors.New("connection refused")}
	v := newTestView(res, false, nil, &logs)

	require.NoError(t, v.Load(context.Background()))

	assert.Equal(t, Idle, v.State())
	assert.Empty(t, v.Items())
	assert.Contains(t, logs.String(), "connection refused")
}

func TestView_CreatePrepends(t *testing.T) {
	res := &fakeUsers{list: []types.User{{ID: 1, Name: "A", Email: "a@x.com"}}, nextID: 1}
	v := newTestView(res, false, nil, &bytes.Buffer{})
	require.NoError(t, v.Load(context.Background()))

	ok := v.Create(context.Background(), types.UserInput{Name: "B", Email: "b@x.com"})

	require.True(t, ok)
	assert.Equal(t, FormError{}, v.CreateError())
	assert.Equal(t, []int64{2, 1}, keys(v.Items()))
}

func TestView_CreateRequiresFields(t *testing.T) {
	res := &fakeUsers{}
	v := newTestView(res, false, nil, &bytes.Buffer{})

	ok := v.Create(context.Background(), types.UserInput{Name: "  ", Email: "b@x.com"})

	assert.False(t, ok)
	assert.Equal(t, FormError{Failed: true, Message: "Name and Email are required."}, v.CreateError())
	assert.Zero(t, res.calls)
}

func TestView_CreateConflictMessage(t *testing.T) {
	res := &fakeUsers{createErr: &APIError{StatusCode: http.StatusConflict, Message: "User already exists"}}
	v := newTestView(res, false, nil, &bytes.Buffer{})

	ok := v.Create(context.Background(), types.UserInput{Name: "A", Email: "a@x.com"})

	assert.False(t, ok)
	assert.Equal(t, "User already exists.", v.CreateError().Message)
	assert.Empty(t, v.Items())
}

func TestView_CreateServerMessage(t *testing.T) {
	res := &fakeUsers{createErr: &APIError{StatusCode: http.StatusBadRequest, Message: "field email must be a valid email address"}}
	v := newTestView(res, false, nil, &bytes.Buffer{})

	v.Create(context.Background(), types.UserInput{Name: "A", Email: "nope"})

	assert.Equal(t, "field email must be a valid email address", v.CreateError().Message)
}

func TestView_CreateClearsPreviousError(t *testing.T) {
	res := &fakeUsers{}
	v := newTestView(res, false, nil, &bytes.Buffer{})

	v.Create(context.Background(), types.UserInput{})
	require.True(t, v.CreateError().Failed)

	require.True(t, v.Create(context.Background(), types.UserInput{Name: "A", Email: "a@x.com"}))
	assert.False(t, v.CreateError().Failed)
}

func TestView_UpdateReplacesInPlace(t *testing.T) {
	res := &fakeUsers{list: []types.User{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}
	v := newTestView(res, false, nil, &bytes.Buffer{})
	require.NoError(t, v.Load(context.Background()))

	ok := v.Update(context.Background(), 1, types.UserInput{Name: "A2", Email: "a2@x.com"})

	require.True(t, ok)
	assert.Equal(t, []types.User{{ID: 2, Name: "B"}, {ID: 1, Name: "A2", Email: "a2@x.com"}}, v.Items())
}

func TestView_UpdateValidation(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		in   types.UserInput
	}{
		{"no id", 0, types.UserInput{Name: "A", Email: "a@x.com"}},
		{"no name", 1, types.UserInput{Email: "a@x.com"}},
		{"no email", 1, types.UserInput{Name: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &fakeUsers{}
			v := newTestView(res, false, nil, &bytes.Buffer{})

			assert.False(t, v.Update(context.Background(), tt.id, tt.in))
			assert.Equal(t, "ID, Name, and Email are required.", v.UpdateError().Message)
			assert.Zero(t, res.calls)
		})
	}
}

func TestView_UpdateFailureKeepsList(t *testing.T) {
	res := &fakeUsers{
		list:      []types.User{{ID: 1, Name: "A"}},
		updateErr: &APIError{StatusCode: http.StatusNotFound, Message: "User not found"},
	}
	v := newTestView(res, false, nil, &bytes.Buffer{})
	require.NoError(t, v.Load(context.Background()))

	assert.False(t, v.Update(context.Background(), 1, types.UserInput{Name: "X", Email: "x@x.com"}))
	assert.Equal(t, FormError{Failed: true, Message: "User not found"}, v.UpdateError())
	assert.Equal(t, []types.User{{ID: 1, Name: "A"}}, v.Items())
}

func TestView_Delete(t *testing.T) {
	res := &fakeUsers{list: []types.User{{ID: 1}, {ID: 2}}}
	v := newTestView(res, false, nil, &bytes.Buffer{})
	require.NoError(t, v.Load(context.Background()))

	v.Delete(context.Background(), 1)
	assert.Equal(t, []int64{2}, keys(v.Items()))

	var logs bytes.Buffer
	v.log = slog.New(slog.NewTextHandler(&logs, nil))
	res.deleteErr = errors.New("boom")

	v.Delete(context.Background(), 2)
	assert.Equal(t, []int64{2}, keys(v.Items()))
	assert.True(t, strings.Contains(logs.String(), "boom"))
}

func TestView_RequiresAuthentication(t *testing.T) {
	res := &fakeUsers{list: []types.User{{ID: 1}}}
	v := newTestView(res, true, StaticToken("t"), &bytes.Buffer{})
	ctx := context.Background()

	assert.ErrorIs(t, v.Load(ctx), ErrNotAuthenticated)

	assert.False(t, v.Create(ctx, types.UserInput{Name: "A", Email: "a@x.com"}))
	assert.Equal(t, "Please log in first.", v.CreateError().Message)

	assert.False(t, v.Update(ctx, 1, types.UserInput{Name: "A", Email: "a@x.com"}))
	assert.Equal(t, "Please log in first.", v.UpdateError().Message)

	v.Delete(ctx, 1)
	assert.Zero(t, res.calls)

	require.NoError(t, v.Authenticate(ctx))
	assert.Equal(t, Authenticated, v.State())

	require.NoError(t, v.Load(ctx))
	assert.Equal(t, Loaded, v.State())
	assert.Len(t, v.Items(), 1)
}

func TestView_AuthenticateFailures(t *testing.T) {
	ctx := context.Background()

	v := newTestView(&fakeUsers{}, true, nil, &bytes.Buffer{})
	assert.ErrorIs(t, v.Authenticate(ctx), ErrNotAuthenticated)

	v = newTestView(&fakeUsers{}, true, StaticToken(""), &bytes.Buffer{})
	assert.ErrorIs(t, v.Authenticate(ctx), ErrNotAuthenticated)
	assert.Equal(t, Idle, v.State())

	v = newTestView(&fakeUsers{}, true, TokenFunc(func(context.Context) (string, error) {
		return "", errors.New("login cancelled")
	}), &bytes.Buffer{})
	err := v.Authenticate(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorContains(t, err, "login cancelled")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "loaded", Loaded.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestRenderCards(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCards(&buf, nil, UserCard))
	assert.Equal(t, "(empty)\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderCards(&buf, []types.Student{
		{StudentID: 2, StudentName: "B", CourseName: "Y"},
		{StudentID: 1, StudentName: "A", CourseName: "X"},
	}, StudentCard))
	assert.Equal(t, "  B\n  Y\n  ID: 2\n\n  A\n  X\n  ID: 1\n", buf.String())
}

func keys[T Keyed](items []T) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.Key())
	}
	return out
}
