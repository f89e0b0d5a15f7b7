package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plexutil/watchsweep/internal/events"
)

const sqliteDBFile = "watchsweep.db"

// New creates a store for the configured backend. Supported backends are
// "json" and "sqlite".
func New(backend, dir string, logger *events.Logger) (Store, error) {
	switch backend {
	case "", "json":
		return NewJSONStore(dir, logger)
	case "sqlite":
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(dir, sqliteDBFile), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
