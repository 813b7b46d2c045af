// game/controller.go
package game

import (
	"encoding/json"
	"time"

	"github.com/profparedes/theme-tier-server/broadcast"
	"github.com/profparedes/theme-tier-server/logger"
	"github.com/profparedes/theme-tier-server/network"
	"github.com/profparedes/theme-tier-server/room"
	"github.com/profparedes/theme-tier-server/timer"
)

// Stats is the slice of the monitor the controller reports into. Narrowed to
// an interface so tests run without a prometheus registry.
type Stats interface {
	SetRoomsActive(count int)
	IncEventsReceived()
	ObserveEventLatency(duration time.Duration)
}

type handlerFunc func(connID string, data json.RawMessage) error

// Controller 接收入站事件, 校验前置条件, 通过房间注册表修改状态并决定广播内容
type Controller struct {
	store     *room.Store
	emitter   broadcast.Emitter
	scheduler *timer.Scheduler
	stats     Stats
	handlers  map[string]handlerFunc
}

func NewController(store *room.Store, emitter broadcast.Emitter, scheduler *timer.Scheduler, stats Stats) *Controller {
	c := &Controller{
		store:     store,
		emitter:   emitter,
		scheduler: scheduler,
		stats:     stats,
	}

	c.handlers = map[string]handlerFunc{
		network.EventCreateRoom:      c.handleCreateRoom,
		network.EventJoinRoom:        c.handleJoinRoom,
		network.EventDistributeCards: c.handleDistributeCards,
		network.EventResetGame:       c.handleResetGame,
		network.EventRemovePlayer:    c.handleRemovePlayer,
		network.EventRedistribute:    c.handleRedistribute,
		network.EventKeepAlive:       c.handleKeepAlive,
		network.EventReconnectPlayer: c.handleReconnectPlayer,
	}

	return c
}

// Dispatch routes one inbound event to its handler. A handler error is
// reported to the originating connection only; a panic is contained here so
// one bad event cannot take other rooms or connections down with it.
func (c *Controller) Dispatch(connID, event string, data json.RawMessage) {
	start := time.Now()
	if c.stats != nil {
		c.stats.IncEventsReceived()
		defer func() {
			c.stats.ObserveEventLatency(time.Since(start))
		}()
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("Panic handling %s from %s: %v", event, connID, rec)
			c.emitter.EmitToConn(connID, network.EventError, ErrorPayload{Message: "internal server error"})
		}
	}()

	handler, exists := c.handlers[event]
	if !exists {
		logger.Log.Infof("Unknown event %q from %s", event, connID)
		return
	}

	if err := handler(connID, data); err != nil {
		logger.Log.Warnf("Event %s from %s rejected: %v", event, connID, err)
		c.emitter.EmitToConn(connID, network.EventError, ErrorPayload{Message: err.Error()})
	}
}

// HandleDisconnect marks the participant disconnected and schedules the
// grace-window eviction. Best effort: nobody is listening on the other end
// anymore, so faults are logged and swallowed.
func (c *Controller) HandleDisconnect(connID string) {
	r, exists := c.store.FindByConn(connID)
	if !exists {
		return
	}

	r.Lock()
	marked := r.MarkDisconnected(connID)
	r.Unlock()
	if !marked {
		return
	}

	roomID := r.ID
	logger.Log.Infof("Connection %s in room %s disconnected, eviction in %v", connID, roomID, room.DisconnectGrace)

	// The timer is never cancelled; the callback re-checks live state, so a
	// reconnect in the meantime turns the fire into a no-op.
	c.scheduler.After(room.DisconnectGrace, func() {
		c.evictIfStillGone(roomID, connID)
	})
}

// evictIfStillGone runs when a grace timer fires. State is re-fetched from
// the store: the room may be gone and the participant may have reconnected
// under a new connection id, in which case nothing happens.
func (c *Controller) evictIfStillGone(roomID, connID string) {
	r, exists := c.store.Get(roomID)
	if !exists {
		return
	}

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return
	}
	p, exists := r.Participant(connID)
	if !exists || p.State != room.StateDisconnected {
		return
	}
	if time.Since(p.DisconnectedAt) < room.DisconnectGrace {
		return
	}

	r.RemoveParticipant(connID)
	c.emitter.LeaveGroup(connID, roomID)
	logger.Log.Infof("Evicted %s (%s) from room %s after grace period", p.Name, connID, roomID)

	if r.Size() == 0 {
		// Closed under the lock so a handler that resolved this room before
		// the delete cannot revive it afterwards.
		r.MarkClosed()
		c.dropRoom(roomID)
		return
	}

	if p.IsMaster {
		master := r.ElectMaster()
		logger.Log.Infof("Room %s master handed to %s (%s)", roomID, master.Name, master.ID)
	}

	c.emitter.EmitToRoom(roomID, network.EventUpdatePlayers, UpdatePlayersPayload{Players: playerList(r)})

	if r.Started {
		if err := c.redistributeLocked(r); err != nil {
			logger.Log.Errorf("Redistribution after eviction in room %s failed: %v", roomID, err)
		}
	}
}

// dropRoom removes an emptied room. Caller may hold the room lock; the store
// and group registry have their own synchronization.
func (c *Controller) dropRoom(roomID string) {
	c.store.Delete(roomID)
	c.emitter.DropGroup(roomID)
	if c.stats != nil {
		c.stats.SetRoomsActive(c.store.Count())
	}
	logger.Log.Infof("Room %s is empty, removed", roomID)
}

func playerList(r *room.Room) []PlayerInfo {
	participants := r.Participants()
	players := make([]PlayerInfo, 0, len(participants))
	for _, p := range participants {
		players = append(players, PlayerInfo{
			ID:       p.ID,
			Name:     p.Name,
			IsMaster: p.IsMaster,
		})
	}
	return players
}
