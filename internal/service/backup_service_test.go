package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"alfabeta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupExportImport(t *testing.T) {
	source, _, _, _ := newPersistence(t)
	ctx := context.Background()

	progress := models.NewPlayerProgress()
	progress.CompletedWords = []string{"word1", "word3"}
	progress.Score = 25
	settings := models.DefaultGameSettings()
	settings.SoundEffects = false
	require.NoError(t, source.Save(ctx, progress, settings))

	exporter := NewBackupService(source, nil)
	exporter.now = func() time.Time { return testStart }

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, exporter.Export(ctx, path))

	target, _, _, _ := newPersistence(t)
	importer := NewBackupService(target, nil)
	require.NoError(t, importer.Import(ctx, path, false))

	gotProgress, gotSettings := target.Load(ctx)
	assert.Equal(t, progress, gotProgress)
	assert.Equal(t, settings, gotSettings)

	assert.ErrorIs(t, importer.Import(ctx, path, false), ErrStateExists)
	assert.NoError(t, importer.Import(ctx, path, true))
}

func TestBackupExportLayout(t *testing.T) {
	p, _, _, _ := newPersistence(t)
	s := NewBackupService(p, nil)
	s.now = func() time.Time { return testStart }

	var buf bytes.Buffer
	require.NoError(t, s.ExportToWriter(context.Background(), &buf))

	var backup BackupData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &backup))
	assert.Equal(t, "1.0", backup.Version)
	assert.Equal(t, "memory", backup.Storage)
	assert.True(t, testStart.Equal(backup.ExportedAt))
	assert.JSONEq(t, "null", string(backup.PlayerProgress))
}

func TestBackupImportRejectsInvalidBlobs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "missing progress", data: `{"version":"1.0","gameSettings":{}}`},
		{name: "malformed settings", data: `{"version":"1.0","playerProgress":{},"gameSettings":{"soundEffects":"no"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, store, _, _ := newPersistence(t)
			s := NewBackupService(p, nil)

			err := s.ImportFromReader(context.Background(), strings.NewReader(tt.data), true)
			assert.Error(t, err)

			_, err = store.Load(context.Background(), ProgressKey)
			assert.Error(t, err, "nothing written")
		})
	}
}

func TestBackupReset(t *testing.T) {
	p, _, _, _ := newPersistence(t)
	ctx := context.Background()

	progress := models.NewPlayerProgress()
	progress.Score = 90
	settings := models.DefaultGameSettings()
	settings.ParentPIN = "9999"
	require.NoError(t, p.Save(ctx, progress, settings))

	s := NewBackupService(p, nil)
	require.NoError(t, s.Reset(ctx, false))
	gotProgress, gotSettings := p.Load(ctx)
	assert.Zero(t, gotProgress.Score)
	assert.Equal(t, "9999", gotSettings.ParentPIN)

	require.NoError(t, s.Reset(ctx, true))
	_, gotSettings = p.Load(ctx)
	assert.Equal(t, models.DefaultParentPIN, gotSettings.ParentPIN)
}
