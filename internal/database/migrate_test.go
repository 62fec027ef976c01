package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/api/internal/migrations"
)

func TestMigrateRunsEmbeddedDirectory(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, migrate(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestMigrateWrapsFailure(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	boom := errors.New("relation already exists")
	gooseUp = func(context.Context, *sql.DB, string) error { return boom }

	err := migrate(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "apply migrations")
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	names, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00001_users.sql",
		"00002_user_sessions.sql",
		"00003_catalog.sql",
	}, names)

	body, err := fs.ReadFile(migrations.Migrations, "00002_user_sessions.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "BEFORE DELETE ON user_sessions")
}
