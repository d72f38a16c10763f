package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"techcrew/internal/logger"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	for name := range names {
		if strings.HasSuffix(name, ".up.sql") {
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			assert.True(t, names[down], "missing %s", down)
		}
	}
}

func TestRunnerAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "crew",
				"POSTGRES_PASSWORD": "crew",
				"POSTGRES_DB":       "crew",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Docker not available: %v", err)
	}
	defer pg.Terminate(ctx)

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://crew:crew@%s:%s/crew?sslmode=disable", host, port.Port())

	r := NewRunner(dsn, Options{SchemaOnly: true}, logger.Discard())
	require.NoError(t, r.Run())
	v, dirty, err := r.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, SchemaVersion, v)
	require.NoError(t, r.Close())

	r = NewRunner(dsn, Options{}, logger.Discard())
	require.NoError(t, r.Run())
	defer r.Close()

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT count(*) FROM inventory_categories").Scan(&n))
	assert.Equal(t, 5, n)

	require.NoError(t, r.Down())
	err = db.QueryRowContext(ctx, "SELECT count(*) FROM bands").Scan(&n)
	assert.Error(t, err)
}
