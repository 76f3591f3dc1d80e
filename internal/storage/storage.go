package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sql.DB holding analysis runs and their per-player results.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the PRS database at path and applies the schema.
// A file database uses WAL journaling; MemoryPath skips it.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection keeps :memory: databases and pragmas consistent
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

func dsn(path string) string {
	if path == MemoryPath {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// SidecarFiles lists the WAL files SQLite keeps next to a file database.
func SidecarFiles(path string) []string {
	if path == MemoryPath {
		return nil
	}
	return []string{path + "-wal", path + "-shm"}
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
