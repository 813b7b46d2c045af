package session

import (
	"net"
	"testing"
	"time"

	"github.com/profparedes/theme-tier-server/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent []string
}

func (m *MockConnection) Send(event string, payload interface{}) error {
	m.sent = append(m.sent, event)
	return nil
}
func (m *MockConnection) ReadEvent() (*network.Envelope, error)   { return nil, nil }
func (m *MockConnection) Close() error                            { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                    { return &net.TCPAddr{} }
func (m *MockConnection) SetReadDeadlineIn(d time.Duration) error { return nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	// Test Add
	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	// Test Get
	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	// Test Remove
	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_SendForwardsToConnection(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)

	if err := sess.Send("room_created", map[string]string{"roomId": "ABC123"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(conn.sent) != 1 || conn.sent[0] != "room_created" {
		t.Errorf("Expected the event forwarded to the connection, got %v", conn.sent)
	}
}

func TestSession_TouchRefreshesLastActive(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})
	before := sess.LastActive

	time.Sleep(5 * time.Millisecond)
	sess.Touch()

	if !sess.LastActive.After(before) {
		t.Error("Touch should advance LastActive")
	}
}
