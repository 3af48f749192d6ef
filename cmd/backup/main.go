package main

import (
	"context"
	"fmt"
	"os"

	"alfabeta/internal/catalog"
	"alfabeta/internal/config"
	"alfabeta/internal/logging"
	"alfabeta/internal/repository"
	"alfabeta/internal/service"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	open := func(ctx context.Context) (*service.BackupService, func(), error) {
		items, err := loadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		store, closeStore, err := repository.Open(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		persistence := service.NewPersistence(store, items, logger.Named("persistence"), nil)
		return service.NewBackupService(persistence, logger.Named("backup")), closeStore, nil
	}

	if err := newRootCmd(open).Execute(); err != nil {
		logger.Error("Backup command failed", zap.Error(err))
		os.Exit(1)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}
