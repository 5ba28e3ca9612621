package migrations

import (
	"context"
	"testing"

	"github.com/locallibrary/library/pkg/config"
	"github.com/locallibrary/library/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
)

func TestBringUpToDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	// Running again is a no-op.
	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)

	for _, table := range []string{"authors", "genres", "books", "book_genres", "book_instances"} {
		count, err := db.NewSelect().TableExpr(table).Count(ctx)
		require.NoError(t, err, table)
		assert.Equal(t, 0, count, table)
	}

	// Genre names are unique regardless of case.
	_, err = db.ExecContext(ctx, "INSERT INTO genres (id, created_at, updated_at, name) VALUES ('g1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 'Poetry')")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO genres (id, created_at, updated_at, name) VALUES ('g2', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 'POETRY')")
	assert.Error(t, err)
}

func TestRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = BringUpToDate(ctx, db)
	require.NoError(t, err)

	migrator := migrate.NewMigrator(db, Migrations)
	group, err := migrator.Rollback(ctx)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	_, err = db.NewSelect().TableExpr("authors").Count(ctx)
	assert.Error(t, err)
}
