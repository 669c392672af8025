package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE test_table (id INTEGER PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM test_table`).Scan(&n))
	return n
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestOpen_MemorySharedAcrossQueries(t *testing.T) {
	db := setupTestDB(t)

	// A second query must see the table created by the first connection.
	_, err := db.Exec(`INSERT INTO test_table (value) VALUES ('a')`)
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, db))
}

func TestWithTx_Success(t *testing.T) {
	db := setupTestDB(t)

	err := WithTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, db))
}

func TestWithTx_Rollback(t *testing.T) {
	db := setupTestDB(t)
	testErr := errors.New("test error")

	err := WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES (?)`, "test"); err != nil {
			return err
		}
		return testErr
	})
	require.ErrorIs(t, err, testErr)
	assert.Equal(t, 0, count(t, db), "insert must be rolled back")
}

func TestWithTx_PartialRollback(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec(`INSERT INTO test_table (value) VALUES ('kept')`)
	require.NoError(t, err)

	err = WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO test_table (value) VALUES ('a')`); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE test_table SET value = 'changed' WHERE id = 1`); err != nil {
			return err
		}
		// Duplicate primary key fails the transaction.
		_, err := tx.Exec(`INSERT INTO test_table (id, value) VALUES (1, 'dup')`)
		return err
	})
	require.Error(t, err)

	var value string
	require.NoError(t, db.QueryRow(`SELECT value FROM test_table`).Scan(&value))
	assert.Equal(t, "kept", value)
	assert.Equal(t, 1, count(t, db))
}

func TestNullStringValue(t *testing.T) {
	assert.Equal(t, "hello", NullStringValue(sql.NullString{String: "hello", Valid: true}))
	assert.Empty(t, NullStringValue(sql.NullString{String: "ignored", Valid: false}))
	assert.Empty(t, NullStringValue(sql.NullString{Valid: true}))
}

func TestNullString(t *testing.T) {
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, NullString("x"))
	assert.Equal(t, sql.NullString{}, NullString(""))
}

func TestNullMillisToTime(t *testing.T) {
	assert.Nil(t, NullMillisToTime(sql.NullInt64{Int64: 42, Valid: false}))

	at := time.Date(2024, 5, 1, 12, 30, 0, 123_000_000, time.UTC)
	got := NullMillisToTime(sql.NullInt64{Int64: at.UnixMilli(), Valid: true})
	require.NotNil(t, got)
	assert.True(t, at.Equal(*got))
}

func TestNullInt64Value(t *testing.T) {
	tests := []struct {
		name string
		in   sql.NullInt64
		want int64
	}{
		{"valid", sql.NullInt64{Int64: 42, Valid: true}, 42},
		{"invalid", sql.NullInt64{Int64: 42, Valid: false}, 0},
		{"zero", sql.NullInt64{Int64: 0, Valid: true}, 0},
		{"negative", sql.NullInt64{Int64: -7, Valid: true}, -7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NullInt64Value(tt.in))
		})
	}
}
