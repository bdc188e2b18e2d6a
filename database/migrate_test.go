package database

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool, cleanupFunc := SetupTestDBContainer(t, ctx)
	t.Cleanup(cleanupFunc)

	connString := pool.Config().ConnString()

	m, err := GetMigrate(connString)
	require.NoError(t, err)
	defer closeMigrate(m)

	// Count the number of logical migrations
	fnames, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, fnames)

	for i := 1; i <= len(fnames); i++ {
		// step up
		err = m.Steps(i)
		assert.NoError(t, err)

		// step down
		err = m.Steps(-i)
		assert.NoError(t, err)

		// step up again
		err = m.Steps(i)
		assert.NoError(t, err)

		// back to zero for the next round
		err = m.Steps(-i)
		assert.NoError(t, err)
	}

	require.NoError(t, MigrateUp(connString))
	var exists bool
	err = pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'sync_kv')").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestToPgx5URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@h:5432/db?sslmode=disable", "pgx5://u:p@h:5432/db?sslmode=disable"},
		{"postgresql://u@h/db", "pgx5://u@h/db"},
		{"pgx5://u@h/db", "pgx5://u@h/db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toPgx5URL(tt.in))
	}
}

func TestMigrateDown_InvalidSteps(t *testing.T) {
	t.Parallel()

	err := MigrateDown("postgres://localhost/db", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps must be positive")
}
