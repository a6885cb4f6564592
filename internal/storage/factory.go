package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/solace/internal/database"
)

// Backend names a FragmentStore implementation.
type Backend string

const (
	// BackendSQLite stores fragments in a local SQLite file. This is the default.
	BackendSQLite Backend = "sqlite"
	// BackendPostgres stores fragments in Postgres with a pgvector column.
	BackendPostgres Backend = "postgres"
	// BackendMemory keeps fragments in process memory. Not durable.
	BackendMemory Backend = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend      string
	DatabasePath string
	PostgresDSN  string
	Logger       *zap.Logger
}

// NewFragmentStore creates a fragment store of the requested backend.
// Supported backends: "sqlite" (default), "postgres", "memory".
func NewFragmentStore(opts Options) (FragmentStore, error) {
	switch Backend(opts.Backend) {
	case BackendSQLite, "":
		return NewSQLiteStore(opts.DatabasePath)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		db, err := database.Open(database.DriverPostgres, opts.PostgresDSN, opts.Logger)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(db)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		store.ownsDB = true
		return store, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: sqlite, postgres, memory)", opts.Backend)
	}
}
