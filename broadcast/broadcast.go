// broadcast/broadcast.go
package broadcast

import (
	"errors"
	"sync"

	"github.com/profparedes/theme-tier-server/session"
)

var (
	ErrConnNotFound = errors.New("connection not found")
)

// Emitter 是核心逻辑看到的传输层接口
type Emitter interface {
	EmitToConn(connID, event string, payload interface{}) error
	EmitToRoom(roomID, event string, payload interface{}, exclude ...string) error
	JoinRoomGroup(connID, roomID string)
	LeaveGroup(connID, roomID string)
	LeaveAllGroups(connID string)
	DropGroup(roomID string)
}

// RoomEmitter resolves room groups to live sessions and writes events out.
type RoomEmitter struct {
	sessionManager *session.Manager
	groups         map[string]map[string]struct{} // roomID -> set of connIDs
	mutex          sync.RWMutex
}

func NewRoomEmitter(sessionManager *session.Manager) *RoomEmitter {
	return &RoomEmitter{
		sessionManager: sessionManager,
		groups:         make(map[string]map[string]struct{}),
	}
}

func (e *RoomEmitter) EmitToConn(connID, event string, payload interface{}) error {
	sess, exists := e.sessionManager.Get(connID)
	if !exists {
		return ErrConnNotFound
	}
	return sess.Send(event, payload)
}

func (e *RoomEmitter) EmitToRoom(roomID, event string, payload interface{}, exclude ...string) error {
	e.mutex.RLock()
	members := make([]string, 0, len(e.groups[roomID]))
	for connID := range e.groups[roomID] {
		members = append(members, connID)
	}
	e.mutex.RUnlock()

	for _, connID := range members {
		if excluded(connID, exclude) {
			continue
		}
		sess, exists := e.sessionManager.Get(connID)
		if !exists {
			continue
		}
		if err := sess.Send(event, payload); err != nil {
			// 发送失败的连接交给断线处理，广播继续
			continue
		}
	}
	return nil
}

func (e *RoomEmitter) JoinRoomGroup(connID, roomID string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.groups[roomID] == nil {
		e.groups[roomID] = make(map[string]struct{})
	}
	e.groups[roomID][connID] = struct{}{}
}

func (e *RoomEmitter) LeaveGroup(connID, roomID string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.groups[roomID], connID)
	if len(e.groups[roomID]) == 0 {
		delete(e.groups, roomID)
	}
}

func (e *RoomEmitter) LeaveAllGroups(connID string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for roomID, members := range e.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(e.groups, roomID)
		}
	}
}

func (e *RoomEmitter) DropGroup(roomID string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.groups, roomID)
}

func excluded(connID string, exclude []string) bool {
	for _, id := range exclude {
		if id == connID {
			return true
		}
	}
	return false
}
