package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/alexanderramin/landminer/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func insertSnapshot(ctx context.Context, tx db.DBTX, payload string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO summary_snapshots (payload, captured_at) VALUES (?, ?)`,
		payload, "2024-01-01T00:00:00Z")
	return err
}

func countSnapshots(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM summary_snapshots`).Scan(&n))
	return n
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertSnapshot(ctx, tx, `{}`)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countSnapshots(t, database))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertSnapshot(ctx, tx, `{}`); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")
	assert.Equal(t, 0, countSnapshots(t, database))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openTestDB(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertSnapshot(ctx, tx, `{}`)
			panic("boom")
		})
	})
	assert.Equal(t, 0, countSnapshots(t, database))
}
