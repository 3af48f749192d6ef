package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"alfabeta/internal/catalog"
	"alfabeta/internal/metrics"
	"alfabeta/internal/models"
	"alfabeta/internal/repository"

	"go.uber.org/zap"
)

// Storage keys of the two persisted blobs
const (
	ProgressKey = "playerProgress"
	SettingsKey = "gameSettings"
)

// Persistence loads and saves PlayerProgress and GameSettings through a StateStore
type Persistence struct {
	store   StateStore
	catalog *catalog.Catalog
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPersistence creates a new persistence adapter
func NewPersistence(store StateStore, c *catalog.Catalog, logger *zap.Logger, m *metrics.Metrics) *Persistence {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persistence{store: store, catalog: c, logger: logger, metrics: m}
}

// Describe names the backing store
func (p *Persistence) Describe() string {
	return p.store.Describe()
}

// Load returns the stored state, substituting defaults for anything missing or malformed
func (p *Persistence) Load(ctx context.Context) (models.PlayerProgress, models.GameSettings) {
	progress := models.NewPlayerProgress()
	if raw, ok := p.read(ctx, ProgressKey); ok {
		var stored models.PlayerProgress
		if err := json.Unmarshal(raw, &stored); err != nil {
			p.logger.Warn("Discarding malformed player progress", zap.Error(err))
			p.metrics.PersistenceError("decode")
		} else {
			progress = p.sanitizeProgress(stored)
		}
	}

	settings := models.DefaultGameSettings()
	if raw, ok := p.read(ctx, SettingsKey); ok {
		stored := models.DefaultGameSettings()
		if err := json.Unmarshal(raw, &stored); err != nil {
			p.logger.Warn("Discarding malformed game settings", zap.Error(err))
			p.metrics.PersistenceError("decode")
		} else {
			settings = p.sanitizeSettings(stored)
		}
	}

	return progress, settings
}

func (p *Persistence) read(ctx context.Context, key string) ([]byte, bool) {
	raw, err := p.store.Load(ctx, key)
	if errors.Is(err, repository.ErrStateNotFound) {
		p.logger.Debug("No stored state, using defaults", zap.String("key", key))
		return nil, false
	}
	if err != nil {
		p.logger.Error("Failed to load state", zap.String("key", key), zap.Error(err))
		p.metrics.PersistenceError("load")
		return nil, false
	}
	return raw, true
}

// Save writes both blobs. Failures are logged and counted before being returned.
func (p *Persistence) Save(ctx context.Context, progress models.PlayerProgress, settings models.GameSettings) error {
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		return p.saveFailed(fmt.Errorf("failed to encode player progress: %w", err))
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return p.saveFailed(fmt.Errorf("failed to encode game settings: %w", err))
	}
	return p.SaveRaw(ctx, progressJSON, settingsJSON)
}

// SaveRaw writes already-encoded blobs
func (p *Persistence) SaveRaw(ctx context.Context, progressJSON, settingsJSON []byte) error {
	if batch, ok := p.store.(batchStore); ok {
		err := batch.SaveAll(ctx, map[string][]byte{
			ProgressKey: progressJSON,
			SettingsKey: settingsJSON,
		})
		if err != nil {
			return p.saveFailed(err)
		}
		return nil
	}

	if err := p.store.Save(ctx, ProgressKey, progressJSON); err != nil {
		return p.saveFailed(fmt.Errorf("failed to save %s: %w", ProgressKey, err))
	}
	if err := p.store.Save(ctx, SettingsKey, settingsJSON); err != nil {
		return p.saveFailed(fmt.Errorf("failed to save %s: %w", SettingsKey, err))
	}
	return nil
}

// LoadRaw returns the stored blobs as-is; a missing key yields nil
func (p *Persistence) LoadRaw(ctx context.Context) (progressJSON, settingsJSON []byte, err error) {
	progressJSON, err = p.store.Load(ctx, ProgressKey)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		return nil, nil, fmt.Errorf("failed to load %s: %w", ProgressKey, err)
	}
	settingsJSON, err = p.store.Load(ctx, SettingsKey)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		return nil, nil, fmt.Errorf("failed to load %s: %w", SettingsKey, err)
	}
	return progressJSON, settingsJSON, nil
}

func (p *Persistence) saveFailed(err error) error {
	p.logger.Error("Failed to persist game state", zap.String("store", p.store.Describe()), zap.Error(err))
	p.metrics.PersistenceError("save")
	return err
}

func (p *Persistence) sanitizeProgress(stored models.PlayerProgress) models.PlayerProgress {
	stored.CompletedWords = dedupe(stored.CompletedWords)
	stored.CompletedSentences = dedupe(stored.CompletedSentences)
	if stored.SessionsHistory == nil {
		stored.SessionsHistory = []models.SessionRecord{}
	}
	if _, ok := p.catalog.Level(stored.CurrentLevel); !ok {
		p.logger.Warn("Stored level unknown, resetting to level 1", zap.Int("level", stored.CurrentLevel))
		stored.CurrentLevel = 1
	}
	if stored.Score < 0 {
		stored.Score = 0
	}
	if stored.StreakCount < 0 {
		stored.StreakCount = 0
	}
	return stored
}

func (p *Persistence) sanitizeSettings(stored models.GameSettings) models.GameSettings {
	stored.DisabledWords = dedupe(stored.DisabledWords)
	if stored.ParentPIN == "" {
		stored.ParentPIN = models.DefaultParentPIN
	}
	return stored
}

// dedupe removes repeated ids, keeping first occurrences in order
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
