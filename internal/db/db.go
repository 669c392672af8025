// Package db holds the SQLite helpers shared by stores.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Open opens the SQLite database at path, creating its directory. The
// pool is limited to one connection so writers never hit SQLITE_BUSY and
// an in-memory database stays a single database.
func Open(path string) (*sql.DB, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
