package statusfeed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case got, ok := <-c.Send:
		require.True(t, ok, "channel closed")
		return string(got)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c1 := &Client{Send: make(chan []byte, 1)}
	c2 := &Client{Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)

	h.Broadcast([]byte("hello"))
	require.Equal(t, "hello", recv(t, c1))
	require.Equal(t, "hello", recv(t, c2))
}

func TestHubReplaysLastToNewClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	h.BroadcastJSON(map[string]string{"phase": "persisted"})
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.last != nil
	}, time.Second, 5*time.Millisecond)

	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	require.JSONEq(t, `{"phase":"persisted"}`, recv(t, c))
}

func TestHubDropsSlowClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	slow := &Client{Send: make(chan []byte)}
	h.Register(slow)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("x"))
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-slow.Send
	require.False(t, ok)
}

func TestUnregisterAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub()
	go h.Run()
	c := &Client{Send: make(chan []byte, 1)}
	h.Register(c)
	h.Stop()
	h.Unregister(c)
}

func TestWebsocketHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub()
	go h.Run()
	defer h.Stop()

	r := gin.New()
	r.GET("/ws/status", Handler(h))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/status"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	h.Broadcast([]byte(`{"text":"Saved"}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"text":"Saved"}`, string(msg))
}
