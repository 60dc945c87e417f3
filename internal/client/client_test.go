package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/roster-api/internal/client"
	"github.com/aanand-mishra/roster-api/internal/http/router"
	"github.com/aanand-mishra/roster-api/internal/storage/sqlite"
	"github.com/aanand-mishra/roster-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/roster-api/internal/types"
)

// authLog records the Authorization header of every request.
type authLog struct {
	mu   sync.Mutex
	seen map[string]string
}

func (a *authLog) get(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seen[key]
}

func newAPI(t *testing.T) (string, *authLog) {
	t.Helper()

	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "client.db"), sqlstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := router.New(store, nil, log)

	auth := &authLog{seen: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.mu.Lock()
		auth.seen[r.Method+" "+r.URL.Path] = r.Header.Get("Authorization")
		auth.mu.Unlock()
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return srv.URL, auth
}

func TestClient_Users(t *testing.T) {
	url, _ := newAPI(t)
	c := client.New(url)
	ctx := context.Background()

	u, err := c.CreateUser(ctx, types.UserInput{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = c.CreateUser(ctx, types.UserInput{Name: "Other", Email: "a@x.com"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, client.StatusCode(err))
	assert.ErrorContains(t, err, "User already exists")

	got, err := c.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	updated, err := c.UpdateUser(ctx, u.ID, types.UserInput{Name: "Alice B", Email: "ab@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "ab@x.com", updated.Email)

	list, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.User{updated}, list)

	deleted, err := c.DeleteUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = c.GetUser(ctx, u.ID)
	assert.Equal(t, http.StatusNotFound, client.StatusCode(err))
}

func TestClient_TokenOnlyOnStudentMutations(t *testing.T) {
	url, seen := newAPI(t)
	c := client.New(url, client.WithTokenSource(client.StaticToken("tok")))
	ctx := context.Background()

	st, err := c.CreateStudent(ctx, types.StudentInput{StudentName: "A", CourseName: "X"})
	require.NoError(t, err)

	_, err = c.ListStudents(ctx)
	require.NoError(t, err)

	_, err = c.UpdateStudent(ctx, st.StudentID, types.StudentInput{StudentName: "A", CourseName: "Y"})
	require.NoError(t, err)

	_, err = c.BulkCreateStudents(ctx, []types.StudentInput{{StudentName: "B", CourseName: "Z"}})
	require.NoError(t, err)

	_, err = c.CreateUser(ctx, types.UserInput{Name: "U", Email: "u@x.com"})
	require.NoError(t, err)

	path := "/students/" + itoa(st.StudentID)
	_, err = c.DeleteStudent(ctx, st.StudentID)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", seen.get("POST /students"))
	assert.Equal(t, "Bearer tok", seen.get("PUT "+path))
	assert.Equal(t, "Bearer tok", seen.get("POST /students/bulk"))
	assert.Equal(t, "Bearer tok", seen.get("DELETE "+path))
	assert.Empty(t, seen.get("GET /students"))
	assert.Empty(t, seen.get("POST /users"))
}

func TestClient_TokenSourceErrorStopsRequest(t *testing.T) {
	url, seen := newAPI(t)
	c := client.New(url, client.WithTokenSource(client.StaticToken("")))

	_, err := c.CreateStudent(context.Background(), types.StudentInput{StudentName: "A", CourseName: "X"})
	require.Error(t, err)
	assert.Zero(t, client.StatusCode(err))

	seen.mu.Lock()
	defer seen.mu.Unlock()
	assert.Empty(t, seen.seen)
}

func TestStudentView_EndToEnd(t *testing.T) {
	url, _ := newAPI(t)
	c := client.New(url, client.WithTokenSource(client.StaticToken("tok")))
	ctx := context.Background()

	v := client.NewStudentView(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorIs(t, v.Load(ctx), client.ErrNotAuthenticated)

	require.NoError(t, v.Authenticate(ctx))
	require.NoError(t, v.Load(ctx))
	assert.Empty(t, v.Items())

	require.True(t, v.Create(ctx, types.StudentInput{StudentName: "A", CourseName: "X"}))
	require.True(t, v.Create(ctx, types.StudentInput{StudentName: "B", CourseName: "Y"}))

	items := v.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].StudentName)

	assert.False(t, v.Create(ctx, types.StudentInput{StudentName: "C"}))
	assert.Equal(t, "Student Name and Course Name are required.", v.CreateError().Message)

	require.True(t, v.Update(ctx, items[1].StudentID, types.StudentInput{StudentName: "A", CourseName: "Physics"}))
	assert.Equal(t, "Physics", v.Items()[1].CourseName)

	v.Delete(ctx, items[0].StudentID)
	assert.Len(t, v.Items(), 1)

	// A fresh load matches the optimistic state.
	fresh := client.NewStudentView(c, nil)
	require.NoError(t, fresh.Authenticate(ctx))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, v.Items(), fresh.Items())
}

func TestUserView_ConflictMessage(t *testing.T) {
	url, _ := newAPI(t)
	c := client.New(url)
	ctx := context.Background()

	v := client.NewUserView(c, nil)
	require.NoError(t, v.Load(ctx))

	require.True(t, v.Create(ctx, types.UserInput{Name: "A", Email: "a@x.com"}))
	assert.False(t, v.Create(ctx, types.UserInput{Name: "B", Email: "a@x.com"}))
	assert.Equal(t, client.FormError{Failed: true, Message: "User already exists."}, v.CreateError())
	assert.Len(t, v.Items(), 1)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
