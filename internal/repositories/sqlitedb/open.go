// Package sqlitedb opens SQLite databases for the embedded stores
package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Memory is the path of a private in-memory database
const Memory = ":memory:"

// BusyTimeoutMillis is how long a connection waits on another writer's lock
const BusyTimeoutMillis = 5000

// DSN builds the driver connection string for path. Pragmas use the
// driver's _pragma form so they run on every new connection.
func DSN(path string) string {
	if path == Memory {
		return path
	}
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		filepath.Clean(path), BusyTimeoutMillis)
}

// Open opens path and applies schema. The pool is limited to one
// connection, which keeps ":memory:" a single database and serializes writers.
func Open(path, schema string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, yzeerr.InvalidArgument("sqlite path is required")
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return db, nil
}

// IsBusy reports whether err is a lock held by another connection or process
// that outlived the busy timeout
func IsBusy(err error) bool {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	switch sqlErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a primary key or unique index clash
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
