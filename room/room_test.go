package room

import (
	"strings"
	"testing"
)

func TestStore_CreateAndGetRoom(t *testing.T) {
	store := NewStore()

	r, err := store.Create("ABC123", "conn1", "Alice", "space")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if r.ID != "ABC123" {
		t.Errorf("Expected room ID ABC123, got %s", r.ID)
	}
	if r.Theme != "space" {
		t.Errorf("Expected theme space, got %s", r.Theme)
	}

	retrieved, exists := store.Get("ABC123")
	if !exists {
		t.Fatal("Get should find the created room")
	}
	if retrieved != r {
		t.Error("Get should return the same room instance")
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	store := NewStore()

	if _, err := store.Create("ABC123", "conn1", "Alice", "space"); err != nil {
		t.Fatalf("First Create returned error: %v", err)
	}
	if _, err := store.Create("ABC123", "conn2", "Bob", "animals"); err != ErrRoomExists {
		t.Fatalf("Expected ErrRoomExists, got %v", err)
	}
}

func TestStore_CreatorIsMaster(t *testing.T) {
	store := NewStore()
	r, _ := store.Create("ABC123", "conn1", "Alice", "space")

	if r.MasterID != "conn1" {
		t.Errorf("Expected MasterID conn1, got %s", r.MasterID)
	}
	p, exists := r.Participant("conn1")
	if !exists {
		t.Fatal("Creator should be a participant")
	}
	if !p.IsMaster {
		t.Error("Creator should hold the master role")
	}
	if p.State != StateActive {
		t.Error("Creator should be active")
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	store.Create("ABC123", "conn1", "Alice", "space")

	store.Delete("ABC123")
	if _, exists := store.Get("ABC123"); exists {
		t.Error("Get should not find a deleted room")
	}
	if store.Count() != 0 {
		t.Errorf("Expected 0 rooms, got %d", store.Count())
	}
}

func TestStore_FindByConn(t *testing.T) {
	store := NewStore()
	store.Create("ROOM01", "conn1", "Alice", "space")
	r2, _ := store.Create("ROOM02", "conn2", "Bob", "animals")

	found, exists := store.FindByConn("conn2")
	if !exists {
		t.Fatal("FindByConn should locate conn2")
	}
	if found != r2 {
		t.Errorf("Expected room %s, got %s", r2.ID, found.ID)
	}

	if _, exists := store.FindByConn("unknown"); exists {
		t.Error("FindByConn should not locate an unknown connection")
	}
}

func TestRoom_MarkClosed(t *testing.T) {
	store := NewStore()
	r, _ := store.Create("ABC123", "conn1", "Alice", "space")

	r.Lock()
	if r.Closed() {
		r.Unlock()
		t.Fatal("A live room should not be closed")
	}
	r.MarkClosed()
	r.Unlock()

	r.Lock()
	defer r.Unlock()
	if !r.Closed() {
		t.Error("MarkClosed should stick")
	}
}

func TestStore_NewID(t *testing.T) {
	store := NewStore()

	id := store.NewID()
	if len(id) != 6 {
		t.Fatalf("Expected a 6-character room code, got %q", id)
	}
	for _, c := range id {
		if !strings.ContainsRune(idAlphabet, c) {
			t.Errorf("Room code character %q outside alphabet", c)
		}
	}
}
