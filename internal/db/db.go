package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = 1

// 공용 스키마 (SQLite / DuckDB 모두 호환)
const schema = `
-- 작업 목록 (seq 순서 = 삽입 순서)
CREATE TABLE IF NOT EXISTS tasks (
    seq BIGINT PRIMARY KEY,
    id VARCHAR NOT NULL,
    title VARCHAR NOT NULL,
    description VARCHAR NOT NULL DEFAULT '',
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at VARCHAR NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_id ON tasks(id);

-- 메타데이터
CREATE TABLE IF NOT EXISTS metadata (
    key VARCHAR PRIMARY KEY,
    value VARCHAR
);
`

const sqliteMemoryDSN = "file::memory:?_foreign_keys=on"

// DB wraps an in-memory SQLite database
type DB struct {
	*sql.DB
}

// Open opens a fresh in-memory SQLite database with the schema applied
func Open() (*DB, error) {
	db, err := sql.Open("sqlite3", sqliteMemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// 커넥션마다 별도 메모리 DB가 생기므로 하나로 고정
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	d := &DB{DB: db}
	if err := d.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return d, nil
}

// Init applies the schema and records its version
func (d *DB) Init() error {
	return initSchema(d)
}

// Path returns the data source of the database
func (d *DB) Path() string {
	return ":memory:"
}

// GetVersion returns the recorded schema version
func (d *DB) GetVersion() (int, error) {
	return schemaVersionOf(d)
}
