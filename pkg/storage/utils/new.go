// Package storageutils constructs a product store from configuration.
package storageutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/storage"
	"github.com/minimartco/minimart/pkg/storage/inmemory"
	"github.com/minimartco/minimart/pkg/storage/postgres"
	"github.com/minimartco/minimart/pkg/storage/sqlite"
)

// NewStoreOpts selects and configures a store backend.
type NewStoreOpts struct {
	// Provider is one of "sqlite", "postgres", "inmemory".
	Provider string

	// SQLitePath is the database file path for the sqlite provider.
	SQLitePath string

	// PostgresDSN is the connection string for the postgres provider.
	PostgresDSN string

	// Dimensions is the embedding vector width, required by the sqlite and
	// postgres providers to shape their vector columns.
	Dimensions uint
}

// NewStore creates the configured store backend.
func NewStore(ctx context.Context, o *NewStoreOpts, logger *zap.Logger) (storage.Store, error) {
	switch o.Provider {
	case "sqlite":
		return sqlite.NewStore(sqlite.Config{
			DBPath:     o.SQLitePath,
			Dimensions: o.Dimensions,
		}, logger)

	case "postgres":
		return postgres.NewStore(ctx, postgres.Config{
			ConnStr:    o.PostgresDSN,
			Dimensions: o.Dimensions,
		}, logger)

	case "inmemory":
		return inmemory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q (available: sqlite, postgres, inmemory)", o.Provider)
	}
}
