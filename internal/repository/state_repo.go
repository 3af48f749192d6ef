package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alfabeta/internal/database"
)

// ErrStateNotFound is returned when no value is stored under a key
var ErrStateNotFound = errors.New("state not found")

// StateRepository stores game state blobs in the game_state table
type StateRepository struct {
	db *database.DB
}

// NewStateRepository creates a SQL-backed state repository
func NewStateRepository(db *database.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Load returns the value stored under key
func (r *StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := `SELECT state_value FROM game_state WHERE state_key = ?`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save inserts or replaces the value stored under key
func (r *StateRepository) Save(ctx context.Context, key string, value []byte) error {
	return r.upsert(ctx, r.db, key, value)
}

// SaveAll writes every entry in a single transaction
func (r *StateRepository) SaveAll(ctx context.Context, entries map[string][]byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range entries {
		if err := r.upsert(ctx, tx, key, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

func (r *StateRepository) upsert(ctx context.Context, q database.DBTX, key string, value []byte) error {
	if _, err := q.ExecContext(ctx, r.db.Dialect.UpsertStateQuery(), key, string(value)); err != nil {
		return fmt.Errorf("failed to save state %s: %w", key, err)
	}
	return nil
}

// Describe names the backend for logs and backups
func (r *StateRepository) Describe() string {
	return r.db.Dialect.DriverName()
}
