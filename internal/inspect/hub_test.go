package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/events/bus"
	"github.com/zeusync/compose/internal/host"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f Frame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Type == typ {
			return f
		}
	}
}

func TestHubStreamsEntityNotifications(t *testing.T) {
	b := bus.New()
	hub, err := NewHub(b, nil)
	require.NoError(t, err)
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	h := host.New(host.DefaultOptions(), nil, b)
	e := entity.New(entity.WithName("lamp"))
	h.Add(e)
	e.AddNamedTag("lit")

	f := readUntil(t, conn, host.EventTagAdded)
	assert.Equal(t, uint64(e.ID()), f.Entity)
	assert.Equal(t, "lamp", f.Name)
	assert.Equal(t, "lit", f.Data["tag"])
	assert.False(t, f.Timestamp.IsZero())
}

func TestHubDropsFramesForSlowClients(t *testing.T) {
	b := bus.New()
	hub, err := NewHub(b, nil)
	require.NoError(t, err)

	slow := &client{id: "slow", send: make(chan []byte, 1), done: make(chan struct{})}
	hub.mu.Lock()
	hub.clients[slow.id] = slow
	hub.mu.Unlock()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Publish(bus.NewEvent("entity.tag.added", 1, "x", nil)))
	}
	assert.Equal(t, uint64(1), hub.Sent())
	assert.Equal(t, uint64(2), hub.Dropped())
	assert.Len(t, slow.send, 1)

	hub.mu.Lock()
	delete(hub.clients, slow.id)
	hub.mu.Unlock()
	require.NoError(t, hub.Close())
}

func TestHubClose(t *testing.T) {
	b := bus.New()
	hub, err := NewHub(b, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, b.Publish(bus.NewEvent("entity.added", 1, "", nil)))
	assert.Zero(t, hub.Sent())
}
