package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*TTSService, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	s := NewTTSService(t.TempDir(), "/static/audio", "pt-BR", zap.NewNop())
	s.baseURL = server.URL
	return s, &calls
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BA", "tile_ba.mp3"},
		{"LÉ", "tile_lé.mp3"},
		{"O GATO", "tile_o_gato.mp3"},
		{"../etc", "tile_etc.mp3"},
		{"  ", "tile_blank.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.in))
		})
	}
}

func TestGenerateAudioFileCaches(t *testing.T) {
	s, calls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pt-BR", r.URL.Query().Get("tl"))
		assert.Equal(t, "BO", r.URL.Query().Get("q"))
		w.Write([]byte("mp3-bytes"))
	})
	ctx := context.Background()

	name, err := s.GenerateAudioFile(ctx, "BO")
	require.NoError(t, err)
	assert.Equal(t, "tile_bo.mp3", name)

	data, err := os.ReadFile(filepath.Join(s.audioDir, name))
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))

	_, err = s.GenerateAudioFile(ctx, "BO")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateAudioFileFailure(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := s.GenerateAudioFile(context.Background(), "LA")
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(s.audioDir, Filename("LA")))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPronounceLogsFailures(t *testing.T) {
	s, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	core, logs := observer.New(zap.WarnLevel)
	s.logger = zap.New(core)

	s.Pronounce("CA")
	s.Wait()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "pronunciation unavailable", logs.All()[0].Message)
}

func TestAudioURL(t *testing.T) {
	s := NewTTSService(t.TempDir(), "/static/audio/", "pt-BR", zap.NewNop())
	assert.Equal(t, "/static/audio/tile_ba.mp3", s.AudioURL("BA"))
}
