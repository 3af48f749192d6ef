package repository

import (
	"context"
	"fmt"

	"alfabeta/internal/config"
	"alfabeta/internal/database"

	"go.uber.org/zap"
)

// Store is implemented by every state backend
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Describe() string
}

// Open returns the backend selected by cfg.StorageBackend and a function
// releasing it
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	switch cfg.StorageBackend {
	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		logger.Info("Database connection established", zap.String("type", cfg.DatabaseType))

		if err := db.RunMigrations(ctx, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return NewStateRepository(db), func() { db.Close() }, nil

	case "local":
		repo, err := NewLocalStateRepository(cfg.AppName)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil

	case "memory":
		return NewMemoryStateRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
