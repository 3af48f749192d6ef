package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"alfabeta/internal/models"

	"go.uber.org/zap"
)

const backupVersion = "1.0"

// ErrStateExists is returned when an import would overwrite stored state without force
var ErrStateExists = errors.New("stored state already exists")

// BackupData is the export file layout
type BackupData struct {
	Version        string          `json:"version"`
	ExportedAt     time.Time       `json:"exportedAt"`
	Storage        string          `json:"storage"`
	PlayerProgress json.RawMessage `json:"playerProgress"`
	GameSettings   json.RawMessage `json:"gameSettings"`
}

// BackupService exports and restores the persisted game state
type BackupService struct {
	persistence *Persistence
	logger      *zap.Logger
	now         func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(p *Persistence, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{persistence: p, logger: logger, now: time.Now}
}

// Export writes a backup of the stored state to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}

	s.logger.Info("State exported", zap.String("path", outputPath), zap.String("storage", s.persistence.Describe()))
	return nil
}

// ExportToWriter writes a backup of the stored state as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	progressJSON, settingsJSON, err := s.persistence.LoadRaw(ctx)
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	backup := &BackupData{
		Version:        backupVersion,
		ExportedAt:     s.now().UTC(),
		Storage:        s.persistence.Describe(),
		PlayerProgress: orNull(progressJSON),
		GameSettings:   orNull(settingsJSON),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// Import restores the stored state from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, force bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	if err := s.ImportFromReader(ctx, file, force); err != nil {
		return err
	}

	s.logger.Info("State imported", zap.String("path", inputPath), zap.String("storage", s.persistence.Describe()))
	return nil
}

// ImportFromReader restores the stored state from a backup reader. Both blobs must
// decode before anything is written.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, force bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	s.logger.Info("Importing backup",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.String("source_storage", backup.Storage),
	)

	var progress models.PlayerProgress
	if err := decodeBlob(backup.PlayerProgress, &progress); err != nil {
		return fmt.Errorf("invalid %s: %w", ProgressKey, err)
	}
	var settings models.GameSettings
	if err := decodeBlob(backup.GameSettings, &settings); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsKey, err)
	}

	if !force {
		existingProgress, existingSettings, err := s.persistence.LoadRaw(ctx)
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}
		if existingProgress != nil || existingSettings != nil {
			return ErrStateExists
		}
	}

	if err := s.persistence.SaveRaw(ctx, backup.PlayerProgress, backup.GameSettings); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// Reset replaces the stored progress with the zero state. The settings are reset
// too when resetSettings is set, which also restores the default parent PIN.
func (s *BackupService) Reset(ctx context.Context, resetSettings bool) error {
	_, settings := s.persistence.Load(ctx)
	if resetSettings {
		settings = models.DefaultGameSettings()
	}

	if err := s.persistence.Save(ctx, models.NewPlayerProgress(), settings); err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}

	s.logger.Info("State reset", zap.Bool("settings", resetSettings), zap.String("storage", s.persistence.Describe()))
	return nil
}

func decodeBlob(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errors.New("missing")
	}
	return json.Unmarshal(raw, v)
}

func orNull(raw []byte) json.RawMessage {
	if raw == nil {
		return json.RawMessage("null")
	}
	return raw
}
