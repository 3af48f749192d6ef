package repository

import (
	"context"
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

const localStateObject = "state"

// LocalStateRepository stores game state in the per-user application data
// directory, one file per key.
type LocalStateRepository struct {
	manager *gdata.Manager
	appName string
}

// NewLocalStateRepository opens the gdata store for appName
func NewLocalStateRepository(appName string) (*LocalStateRepository, error) {
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local data store: %w", err)
	}
	return &LocalStateRepository{manager: manager, appName: appName}, nil
}

// Load returns the value stored under key
func (r *LocalStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.manager.ObjectPropExists(localStateObject, key) {
		return nil, ErrStateNotFound
	}

	data, err := r.manager.LoadObjectProp(localStateObject, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load state %s: %w", key, err)
	}
	return data, nil
}

// Save replaces the value stored under key
func (r *LocalStateRepository) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.manager.SaveObjectProp(localStateObject, key, value); err != nil {
		return fmt.Errorf("failed to save state %s: %w", key, err)
	}
	return nil
}

// Describe names the backend for logs and backups
func (r *LocalStateRepository) Describe() string {
	return "local:" + r.appName
}
