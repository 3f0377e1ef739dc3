package task

import (
	"fmt"

	"github.com/n0roo/todo-mcp/internal/db"
)

// Backend names a Store implementation
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendDuckDB Backend = "duckdb"
)

// Backends returns all known backends
func Backends() []Backend {
	return []Backend{BackendMemory, BackendSQLite, BackendDuckDB}
}

// Open builds an empty store for the backend. SQL backends always run in
// memory; nothing outlives the process.
func Open(backend Backend, opts ...Option) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(opts...), nil
	case BackendSQLite, BackendDuckDB:
		database, err := db.OpenType(db.DBType(backend))
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", backend, err)
		}
		return NewSQLStore(database, opts...), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
