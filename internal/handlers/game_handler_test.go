package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"alfabeta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEndpoint(t *testing.T) {
	ts := newTestServer(t, 5)

	rec := ts.do(t, http.MethodGet, "/api/catalog", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body catalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Modes, 2)
	assert.Len(t, body.Levels, 3)
}

func TestStartAndSolveWord(t *testing.T) {
	ts := newTestServer(t, 5)

	rec := ts.do(t, http.MethodPost, "/api/game/start", map[string]any{"mode": models.ModeCompleteWord, "level": 1}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decodeState(t, rec)
	require.NotNil(t, state.CurrentItem)
	assert.Equal(t, models.ModeCompleteWord, state.Mode.ID)
	assert.Equal(t, 1, state.Level.ID)
	assert.Equal(t, models.AttemptEmpty, state.Attempt.State)

	answer := ts.canonical(t, state.CurrentItem)
	require.Len(t, state.Attempt.Slots, len(answer))

	for i, text := range answer {
		rec = ts.do(t, http.MethodPost, "/api/practice/place", placeRequest{
			Slot:   state.Attempt.Slots[i].ID,
			TileID: tileFor(t, state.Attempt, text),
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		state = decodeState(t, rec)
	}

	assert.Equal(t, models.AttemptCorrect, state.Attempt.State)
	assert.True(t, state.Attempt.Pending)

	rec = ts.do(t, http.MethodPost, "/api/game/next", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "locked while the success delay runs")

	first := state.CurrentItem.ID
	ts.clock.Advance(500 * time.Millisecond)

	rec = ts.do(t, http.MethodGet, "/api/game", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	assert.Equal(t, 10, state.Progress.Score)
	assert.Equal(t, 1, state.Progress.StreakCount)
	assert.Equal(t, []string{first}, state.Progress.CompletedWords)

	ts.clock.Advance(3 * time.Second)

	state = decodeState(t, ts.do(t, http.MethodGet, "/api/game", nil, nil))
	require.NotNil(t, state.CurrentItem)
	assert.NotEqual(t, first, state.CurrentItem.ID)
	assert.Equal(t, models.AttemptEmpty, state.Attempt.State)
}

func TestStartDefaults(t *testing.T) {
	ts := newTestServer(t, 5)

	rec := ts.do(t, http.MethodPost, "/api/game/start", map[string]any{}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decodeState(t, rec)
	assert.Equal(t, models.ModeCompleteWord, state.Mode.ID)
	assert.Equal(t, 1, state.Level.ID)
}

func TestGameErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "unknown mode", method: http.MethodPost, path: "/api/game/mode", body: map[string]string{"mode": "spelling"}, want: http.StatusBadRequest},
		{name: "unknown level", method: http.MethodPost, path: "/api/game/level", body: map[string]int{"level": 9}, want: http.StatusBadRequest},
		{name: "unknown start mode", method: http.MethodPost, path: "/api/game/start", body: map[string]any{"mode": "spelling", "level": 1}, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/game/level", body: map[string]any{"lvl": 2}, want: http.StatusBadRequest},
		{name: "unknown slot", method: http.MethodPost, path: "/api/practice/place", body: placeRequest{Slot: "nope", TileID: "nope"}, want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, path: "/api/game/start", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, 5)
			rec := ts.do(t, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestPlaceIntoFilledSlot(t *testing.T) {
	ts := newTestServer(t, 5)

	state := decodeState(t, ts.do(t, http.MethodPost, "/api/game/start", map[string]any{"mode": models.ModeFormSentence, "level": 1}, nil))
	require.NotNil(t, state.CurrentItem)
	assert.Equal(t, models.KindSentence, state.CurrentItem.Kind)

	slot := state.Attempt.Slots[0].ID
	rec := ts.do(t, http.MethodPost, "/api/practice/place", placeRequest{Slot: slot, TileID: state.Attempt.Tiles[0].ID}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/practice/place", placeRequest{Slot: slot, TileID: state.Attempt.Tiles[1].ID}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestChangeModeServesSentence(t *testing.T) {
	ts := newTestServer(t, 5)

	rec := ts.do(t, http.MethodPost, "/api/game/mode", modeRequest{Mode: models.ModeFormSentence}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decodeState(t, rec)
	require.NotNil(t, state.CurrentItem)
	assert.Equal(t, models.KindSentence, state.CurrentItem.Kind)
	require.NotNil(t, state.Attempt.Item)
	assert.Equal(t, state.CurrentItem.ID, state.Attempt.Item.ID)
}

func TestLevelChangeDropsPendingSuccess(t *testing.T) {
	ts := newTestServer(t, 5)

	state := decodeState(t, ts.do(t, http.MethodGet, "/api/game", nil, nil))
	for i, text := range ts.canonical(t, state.CurrentItem) {
		rec := ts.do(t, http.MethodPost, "/api/practice/place", placeRequest{
			Slot:   state.Attempt.Slots[i].ID,
			TileID: tileFor(t, state.Attempt, text),
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		state = decodeState(t, rec)
	}
	require.Equal(t, models.AttemptCorrect, state.Attempt.State)

	rec := ts.do(t, http.MethodPost, "/api/game/level", levelRequest{Level: 2}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ts.clock.Advance(4 * time.Second)

	state = decodeState(t, ts.do(t, http.MethodGet, "/api/game", nil, nil))
	assert.Zero(t, state.Progress.Score)
	assert.Empty(t, state.Progress.CompletedWords)
	require.NotNil(t, state.Attempt.Item)
	assert.Equal(t, 2, state.Attempt.Item.Level)
	assert.Equal(t, models.AttemptEmpty, state.Attempt.State)
}
