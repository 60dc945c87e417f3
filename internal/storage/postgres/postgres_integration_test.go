//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aanand-mishra/roster-api/internal/storage"
	"github.com/aanand-mishra/roster-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/roster-api/internal/types"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "roster",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/roster?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	s, err := Open(ctx, dsn, sqlstore.Options{AtomicBulk: true})
	require.NoError(t, err)
	defer s.Close()

	alice, err := s.CreateUser(ctx, types.UserInput{Name: "Alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, types.UserInput{Name: "Alice2", Email: "a@x.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	// Bypass the pre-check to exercise the constraint path.
	_, err = s.DB().ExecContext(ctx, "INSERT INTO users (name, email) VALUES ($1, $2)", "x", "a@x.com")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	out, err := s.CreateStudents(ctx, []types.StudentInput{
		{StudentName: "A", CourseName: "X"},
		{StudentName: "B", CourseName: "Y"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].StudentID, out[1].StudentID)

	_, err = s.DeleteStudent(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
