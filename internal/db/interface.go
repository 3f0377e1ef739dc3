package db

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Database is the common interface for SQLite and DuckDB
type Database interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Begin() (*sql.Tx, error)
	Close() error
	Path() string
	GetVersion() (int, error)
	GetDB() *sql.DB
}

// Ensure both types implement Database interface
var _ Database = (*DB)(nil)
var _ Database = (*DuckDB)(nil)

// GetDB returns the underlying sql.DB for DB (SQLite)
func (d *DB) GetDB() *sql.DB {
	return d.DB
}

// GetDB returns the underlying sql.DB for DuckDB
func (d *DuckDB) GetDB() *sql.DB {
	return d.DB
}

// DBType represents the database type
type DBType string

const (
	TypeSQLite DBType = "sqlite"
	TypeDuckDB DBType = "duckdb"
)

// OpenType opens an in-memory database of the given type
func OpenType(t DBType) (Database, error) {
	switch t {
	case TypeSQLite:
		return Open()
	case TypeDuckDB:
		return OpenDuckDB()
	default:
		return nil, fmt.Errorf("unsupported database type %q", t)
	}
}

// GetMeta reads a metadata value; ok is false when the key is absent
func GetMeta(d Database, key string) (value string, ok bool, err error) {
	err = d.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read metadata %s: %w", key, err)
	}
	return value, true, nil
}

// SetMeta upserts a metadata value
func SetMeta(d Database, key, value string) error {
	_, err := d.Exec(`INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write metadata %s: %w", key, err)
	}
	return nil
}

func initSchema(d Database) error {
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return SetMeta(d, "schema_version", strconv.Itoa(schemaVersion))
}

func schemaVersionOf(d Database) (int, error) {
	value, ok, err := GetMeta(d, "schema_version")
	if err != nil || !ok {
		return 0, err
	}
	version, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse schema version %q: %w", value, err)
	}
	return version, nil
}
