package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"alfabeta/internal/catalog"
	"alfabeta/internal/models"
	"alfabeta/internal/repository"
	"alfabeta/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	persistence *service.Persistence
	opens       int
}

func newTestState(t *testing.T) *testState {
	t.Helper()
	items, err := catalog.Default()
	require.NoError(t, err)
	return &testState{persistence: service.NewPersistence(repository.NewMemoryStateRepository(), items, nil, nil)}
}

func (s *testState) open(context.Context) (*service.BackupService, func(), error) {
	s.opens++
	return service.NewBackupService(s.persistence, nil), func() {}, nil
}

func run(t *testing.T, s *testState, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(s.open)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	source := newTestState(t)

	progress := models.NewPlayerProgress()
	progress.Score = 40
	progress.CompletedWords = []string{"word1"}
	require.NoError(t, source.persistence.Save(ctx, progress, models.DefaultGameSettings()))

	path := filepath.Join(t.TempDir(), "nested", "backup.json")
	out, err := run(t, source, "", "export", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Export complete")

	target := newTestState(t)
	_, err = run(t, target, "", "import", "--input", path)
	require.NoError(t, err)

	got, _ := target.persistence.Load(ctx)
	assert.Equal(t, 40, got.Score)
	assert.Equal(t, []string{"word1"}, got.CompletedWords)

	_, err = run(t, target, "", "import", "--input", path)
	assert.ErrorIs(t, err, service.ErrStateExists)

	_, err = run(t, target, "", "import", "--input", path, "--force")
	assert.NoError(t, err)
}

func TestImportValidation(t *testing.T) {
	s := newTestState(t)

	_, err := run(t, s, "", "import")
	assert.Error(t, err, "--input is required")

	_, err = run(t, s, "", "import", "--input", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.Zero(t, s.opens, "store not opened for a missing file")
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t)

	progress := models.NewPlayerProgress()
	progress.Score = 75
	require.NoError(t, s.persistence.Save(ctx, progress, models.DefaultGameSettings()))

	out, err := run(t, s, "no\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset cancelled")
	got, _ := s.persistence.Load(ctx)
	assert.Equal(t, 75, got.Score)

	out, err = run(t, s, "yes\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset complete")
	got, _ = s.persistence.Load(ctx)
	assert.Zero(t, got.Score)

	_, err = run(t, s, "", "reset", "--yes", "--settings")
	require.NoError(t, err)
}
