package db

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// DuckDB wraps an in-memory DuckDB database
type DuckDB struct {
	*sql.DB
}

// OpenDuckDB opens a fresh in-memory DuckDB database with the schema applied
func OpenDuckDB() (*DuckDB, error) {
	// 빈 DSN = 메모리 DB
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	d := &DuckDB{DB: db}
	if err := d.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init duckdb schema: %w", err)
	}

	return d, nil
}

// Init applies the schema and records its version
func (d *DuckDB) Init() error {
	return initSchema(d)
}

// Path returns the data source of the database
func (d *DuckDB) Path() string {
	return ":memory:"
}

// GetVersion returns the recorded schema version
func (d *DuckDB) GetVersion() (int, error) {
	return schemaVersionOf(d)
}
