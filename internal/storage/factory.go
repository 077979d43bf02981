package storage

import (
	"fmt"

	"github.com/cxd309/strike-engine/internal/config"
	"github.com/cxd309/strike-engine/internal/storage/memory"
	sqlitestorage "github.com/cxd309/strike-engine/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration. The backend is
// not initialised.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.New(), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{Path: cfg.SQLite.Path}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
