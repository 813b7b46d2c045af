package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/profparedes/theme-tier-server/logger"
	"github.com/profparedes/theme-tier-server/network"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*LobbyServer, *httptest.Server) {
	t.Helper()
	s := NewLobbyServer(":0", nil)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	t.Cleanup(s.Shutdown)
	return s, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

// TestWebSocket_CreateRoomRoundTrip drives the read loop end to end: dial,
// send create_room, read room_created back.
func TestWebSocket_CreateRoomRoundTrip(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	env := &network.Envelope{
		Event: network.EventCreateRoom,
		Data:  []byte(`{"playerName":"Alice","theme":"space"}`),
	}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("Failed to send create_room: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply network.Envelope
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("Failed to read reply: %v", err)
	}
	if reply.Event != network.EventRoomCreated {
		t.Fatalf("Expected %s, got %s", network.EventRoomCreated, reply.Event)
	}

	if s.store.Count() != 1 {
		t.Errorf("Expected 1 live room, got %d", s.store.Count())
	}
}

func TestWebSocket_BadEventYieldsNoReply(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	env := &network.Envelope{Event: "no_such_event"}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("Failed to send event: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var reply network.Envelope
	if err := conn.ReadJSON(&reply); err == nil {
		t.Errorf("Unknown events should be dropped, got reply %s", reply.Event)
	}
}
