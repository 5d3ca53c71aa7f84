package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func insertPair(ctx context.Context, tx DBTX) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('auth-token', 'a.b.c')`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES ('auth-user', '{}')`)
	return err
}

func TestWithTx_CommitsBothWrites(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, insertPair)
	require.NoError(t, err)
	require.Equal(t, 2, countRows(t, db))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertPair(ctx, tx))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, countRows(t, db), "no partial session may remain")
}

func TestWithTx_RollsBackAndRepanics(t *testing.T) {
	db := setupDB(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insertPair(ctx, tx))
			panic("kaput")
		})
	})
	require.Zero(t, countRows(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	require.Error(t, err)
}
