// Package backend opens the record store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/config"
	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/repository/mongodb"
	"github.com/mamadbah2/herdcare/internal/repository/sqlite"
)

// Open connects to the configured store. Callers own the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path, logger.Named("sqlite"))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMongoDB:
		store, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("mongodb"))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
