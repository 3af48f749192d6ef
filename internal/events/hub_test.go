package events

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alfabeta/internal/metrics"
	"alfabeta/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubBroadcastsEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zap.NewNop(), metrics.New())
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	first := dial(t, server)
	defer first.Close()
	second := dial(t, server)
	defer second.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish(models.GameEvent{Type: models.EventSuccess, ItemID: "word3", Points: 10, Score: 10, Streak: 1})

	for _, conn := range []*websocket.Conn{first, second} {
		var got models.GameEvent
		conn.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, models.EventSuccess, got.Type)
		assert.Equal(t, "word3", got.ItemID)
		assert.Equal(t, 10, got.Points)
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zap.NewNop(), nil)
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	assert.NotPanics(t, func() {
		hub.Publish(models.GameEvent{Type: models.EventAlert})
	})
}

func TestClosedHubRejectsClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(zap.NewNop(), nil)
	hub.Close()

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.ClientCount())
}
