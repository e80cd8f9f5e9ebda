// Package prefs provides the per-user key/value preference store that backs
// widget containers.
//
// The Store interface is deliberately narrow: opaque get/set/delete on
// (user, key) pairs. Containers are serialized into one entry per context by
// the container package; drivers never interpret the payload. Four drivers
// ship: memory (default, tests), file (gzip JSON documents), redis, and
// sqlite (gorm). Open selects one from configuration.
package prefs

import (
	"context"
	"fmt"

	"github.com/reportdeck/backend/internal/infrastructure/config"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Store is the external preference persistence used by container state.
// Values must be JSON documents; the container codec always writes JSON.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, userID, key string) ([]byte, bool, error)

	// Set stores the value, overwriting any previous entry.
	Set(ctx context.Context, userID, key string, value []byte) error

	// Delete removes the entry if present.
	Delete(ctx context.Context, userID, key string) error

	// Close releases driver resources.
	Close() error
}

// Open creates the store named by cfg.Driver.
func Open(cfg config.PrefsConfig, logger *logging.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Dir)
	case DriverRedis:
		return NewRedis(cfg)
	case DriverSQLite:
		return NewSQLite(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown prefs driver %q", cfg.Driver)
	}
}
