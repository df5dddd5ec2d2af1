package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumecms/internal/publish/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	var msg WSMessage
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &msg), "Failed to unmarshal WSMessage JSON")
	return msg
}

func dial(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, userID)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNotifyPublishedReachesEveryClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	conn1 := dial(t, hub, "admin-1")
	conn2 := dial(t, hub, "admin-2")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	result := model.PublishResult{
		VersionID:         "v-1",
		PublishedAt:       time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		SectionsPublished: []string{"hero", "experiences", "projects", "education", "skills", "certifications", "socialLinks"},
	}
	hub.NotifyPublished("admin-1", result)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readMessage(t, conn)
		assert.Equal(t, PublishedType, msg.Type)
		assert.Equal(t, "admin-1", msg.UserID)

		var got model.PublishResult
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, result.VersionID, got.VersionID)
		assert.Equal(t, result.SectionsPublished, got.SectionsPublished)
		assert.True(t, result.PublishedAt.Equal(got.PublishedAt))
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	conn := dial(t, hub, "admin-1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestNotifyPublishedWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 32; i++ {
			hub.NotifyPublished("admin", model.PublishResult{VersionID: "v"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyPublished blocked")
	}
}
