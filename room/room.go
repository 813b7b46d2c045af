// room/room.go
package room

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ConnState 表示参与者的连接状态
type ConnState int

const (
	StateActive ConnState = iota
	StateDisconnected
)

// DisconnectGrace is the window a disconnected participant is kept in the
// room before permanent eviction.
const DisconnectGrace = 120 * time.Second

var ErrRoomExists = errors.New("room already exists")

// Participant 是房间内的一名玩家
type Participant struct {
	ID       string
	Name     string
	IsMaster bool
	State    ConnState
	JoinedAt time.Time
	LastSeen time.Time

	// Set while State == StateDisconnected.
	DisconnectedAt time.Time
	// PreviousID holds the connection id the participant last disconnected
	// under; stale card entries are resolved through it on reconnect.
	PreviousID string
}

// Room 是一局游戏的核心结构。所有读写必须在持有房间锁的前提下进行，
// 复合操作由调用方(controller)加锁以保证对单个房间的串行化。
type Room struct {
	ID        string
	MasterID  string
	Theme     string
	Started   bool
	Cards     map[string]int
	CreatedAt time.Time

	participants map[string]*Participant
	order        []string // join order, drives iteration and master election
	closed       bool

	mutex sync.Mutex
}

func newRoom(id, theme string) *Room {
	return &Room{
		ID:           id,
		Theme:        theme,
		Cards:        make(map[string]int),
		CreatedAt:    time.Now(),
		participants: make(map[string]*Participant),
	}
}

// Lock serializes access to the room. Every read-modify-write sequence on a
// single room runs under it; rooms are independent of each other.
func (r *Room) Lock() { r.mutex.Lock() }

func (r *Room) Unlock() { r.mutex.Unlock() }

// MarkClosed flags a room that has been removed from the store. A handler
// that resolved the room before the removal sees the flag after taking the
// lock and must treat the room as gone. Caller holds the lock.
func (r *Room) MarkClosed() { r.closed = true }

// Closed reports whether the room has been removed from the store. Caller
// holds the lock.
func (r *Room) Closed() bool { return r.closed }

// Participant returns the participant keyed by connection id.
func (r *Room) Participant(connID string) (*Participant, bool) {
	p, exists := r.participants[connID]
	return p, exists
}

// FindByName returns the first participant with the given display name, in
// join order.
func (r *Room) FindByName(name string) (*Participant, bool) {
	for _, id := range r.order {
		if p := r.participants[id]; p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Participants returns all participants in join order.
func (r *Room) Participants() []*Participant {
	result := make([]*Participant, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.participants[id])
	}
	return result
}

func (r *Room) Size() int {
	return len(r.participants)
}

// CardFor resolves the card held by a participant, preferring its current
// connection id and falling back to the id it disconnected under.
func (r *Room) CardFor(p *Participant) (int, bool) {
	if card, ok := r.Cards[p.ID]; ok {
		return card, true
	}
	if p.PreviousID != "" {
		if card, ok := r.Cards[p.PreviousID]; ok {
			return card, true
		}
	}
	return 0, false
}

// --- 房间注册表 ---

// Store is the process-wide room registry.
type Store struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// Create registers a new room whose first participant is the master. It fails
// if the id is already live.
func (s *Store) Create(id, masterConnID, masterName, theme string) (*Room, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.rooms[id]; exists {
		return nil, ErrRoomExists
	}

	room := newRoom(id, theme)
	room.AddParticipant(masterConnID, masterName)
	s.rooms[id] = room
	return room, nil
}

func (s *Store) Get(id string) (*Room, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	room, exists := s.rooms[id]
	return room, exists
}

func (s *Store) Delete(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.rooms, id)
}

// FindByConn locates the room currently holding the connection. Transport
// disconnects carry no payload, so the room has to be resolved here.
func (s *Store) FindByConn(connID string) (*Room, bool) {
	// Snapshot first: room locks are never taken while the store lock is
	// held, deletion takes them in the opposite order.
	s.mutex.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mutex.RUnlock()

	for _, r := range rooms {
		r.Lock()
		_, exists := r.participants[connID]
		r.Unlock()
		if exists {
			return r, true
		}
	}
	return nil, false
}

func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.rooms)
}

const idAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewID generates a short room code unused by any live room.
func (s *Store) NewID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for {
		code := make([]byte, 6)
		for i := range code {
			code[i] = idAlphabet[rand.Intn(len(idAlphabet))]
		}
		if _, taken := s.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}
