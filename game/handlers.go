// game/handlers.go
package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/profparedes/theme-tier-server/deck"
	"github.com/profparedes/theme-tier-server/logger"
	"github.com/profparedes/theme-tier-server/network"
	"github.com/profparedes/theme-tier-server/room"
)

func (c *Controller) handleCreateRoom(connID string, data json.RawMessage) error {
	var req CreateRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("bad create_room payload: %w", err)
	}

	name := strings.TrimSpace(req.PlayerName)
	theme := strings.TrimSpace(req.Theme)
	if name == "" {
		return ErrNameRequired
	}
	if theme == "" {
		return ErrThemeRequired
	}

	var r *room.Room
	for {
		var err error
		r, err = c.store.Create(c.store.NewID(), connID, name, theme)
		if err == nil {
			break
		}
		// NewID race lost, draw again
	}
	if c.stats != nil {
		c.stats.SetRoomsActive(c.store.Count())
	}

	c.emitter.JoinRoomGroup(connID, r.ID)
	logger.Log.Infof("Room %s (%q) created by %s (%s)", r.ID, theme, name, connID)

	return c.emitter.EmitToConn(connID, network.EventRoomCreated, RoomCreatedPayload{
		RoomID: r.ID,
		Theme:  r.Theme,
	})
}

func (c *Controller) handleJoinRoom(connID string, data json.RawMessage) error {
	var req JoinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("bad join_room payload: %w", err)
	}

	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return ErrNameRequired
	}

	r, exists := c.store.Get(req.RoomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.Lock()
	defer r.Unlock()

	// The room can be evicted away between the store lookup and the lock.
	if r.Closed() {
		return ErrRoomNotFound
	}

	p := r.AddParticipant(connID, name)
	c.emitter.JoinRoomGroup(connID, r.ID)
	logger.Log.Infof("%s (%s) joined room %s", name, connID, r.ID)

	c.emitter.EmitToConn(connID, network.EventRoomJoined, RoomJoinedPayload{
		RoomID:   r.ID,
		Theme:    r.Theme,
		IsMaster: p.IsMaster,
		Players:  playerList(r),
	})
	c.emitter.EmitToRoom(r.ID, network.EventUpdatePlayers, UpdatePlayersPayload{Players: playerList(r)}, connID)

	// A started game must cover the newcomer: the whole assignment is redrawn
	// so uniqueness holds across every current participant.
	if r.Started {
		return c.redistributeLocked(r)
	}
	return nil
}

func (c *Controller) handleDistributeCards(connID string, data json.RawMessage) error {
	r, err := c.namedRoom(data)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return ErrRoomNotFound
	}
	if r.MasterID != connID {
		return ErrNotMaster
	}
	return c.redistributeLocked(r)
}

// handleResetGame clears the assignment, announces the reset and immediately
// redeals, as one compound operation under the room lock.
func (c *Controller) handleResetGame(connID string, data json.RawMessage) error {
	r, err := c.namedRoom(data)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return ErrRoomNotFound
	}
	if r.MasterID != connID {
		return ErrNotMaster
	}

	r.Cards = make(map[string]int)
	r.Started = false
	c.emitter.EmitToRoom(r.ID, network.EventGameReset, struct{}{})
	logger.Log.Infof("Room %s reset by master %s", r.ID, connID)

	return c.redistributeLocked(r)
}

func (c *Controller) handleRedistribute(connID string, data json.RawMessage) error {
	r, err := c.namedRoom(data)
	if err != nil {
		return err
	}

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return ErrRoomNotFound
	}
	if r.MasterID != connID {
		return ErrNotMaster
	}
	return c.redistributeLocked(r)
}

func (c *Controller) handleRemovePlayer(connID string, data json.RawMessage) error {
	var req RemovePlayerRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("bad remove_player payload: %w", err)
	}

	r, exists := c.store.Get(req.RoomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		return ErrRoomNotFound
	}
	if r.MasterID != connID {
		return ErrNotMaster
	}
	target, exists := r.FindByName(req.PlayerName)
	if !exists {
		return ErrPlayerNotFound
	}
	if target.IsMaster {
		return ErrCannotRemoveMaster
	}

	r.RemoveParticipant(target.ID)
	c.emitter.EmitToConn(target.ID, network.EventPlayerRemoved, PlayerRemovedPayload{
		Message: "You have been removed from the room",
	})
	c.emitter.LeaveGroup(target.ID, r.ID)
	logger.Log.Infof("%s removed from room %s by master", req.PlayerName, r.ID)

	c.emitter.EmitToRoom(r.ID, network.EventUpdatePlayers, UpdatePlayersPayload{Players: playerList(r)})

	if r.Started && r.Size() > 0 {
		return c.redistributeLocked(r)
	}
	return nil
}

func (c *Controller) handleKeepAlive(connID string, data json.RawMessage) error {
	var req RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil
	}

	r, exists := c.store.Get(req.RoomID)
	if !exists {
		// 未知房间的心跳静默忽略
		return nil
	}

	r.Lock()
	defer r.Unlock()
	if r.Closed() {
		return nil
	}
	if p, exists := r.Participant(connID); exists {
		p.LastSeen = time.Now()
	}
	return nil
}

func (c *Controller) handleReconnectPlayer(connID string, data json.RawMessage) error {
	var req ReconnectRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("bad reconnect_player payload: %w", err)
	}

	r, exists := c.store.Get(req.RoomID)
	if !exists {
		// Not an error: the room may have expired while the client was away.
		logger.Log.Infof("Reconnect for %q to unknown room %s ignored", req.PlayerName, req.RoomID)
		return nil
	}

	r.Lock()
	defer r.Unlock()

	if r.Closed() {
		logger.Log.Infof("Reconnect for %q to expired room %s ignored", req.PlayerName, req.RoomID)
		return nil
	}

	p, matched := r.ReconcileReconnect(connID, strings.TrimSpace(req.PlayerName))
	if !matched {
		logger.Log.Infof("Reconnect for %q to room %s matched nobody", req.PlayerName, req.RoomID)
		return nil
	}

	if p.PreviousID != "" {
		c.emitter.LeaveGroup(p.PreviousID, r.ID)
	}
	c.emitter.JoinRoomGroup(connID, r.ID)
	logger.Log.Infof("%s reconnected to room %s as %s", p.Name, r.ID, connID)

	c.emitter.EmitToConn(connID, network.EventRoomJoined, RoomJoinedPayload{
		RoomID:   r.ID,
		Theme:    r.Theme,
		IsMaster: p.IsMaster,
		Players:  playerList(r),
	})
	c.emitter.EmitToRoom(r.ID, network.EventUpdatePlayers, UpdatePlayersPayload{Players: playerList(r)})

	if r.Started {
		if card, ok := r.CardFor(p); ok {
			c.emitter.EmitToConn(connID, network.EventCardDistributed, CardPayload{Card: card})
		}
	}
	return nil
}

// namedRoom resolves the room named in the request payload.
func (c *Controller) namedRoom(data json.RawMessage) (*room.Room, error) {
	var req RoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("bad payload: %w", err)
	}

	r, exists := c.store.Get(req.RoomID)
	if !exists {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// redistributeLocked redraws the whole assignment for every current
// participant: one fresh distinct card each, in join order. On allocator
// shortfall nothing is applied and the room never enters the started state
// off a failed draw. Caller holds the room lock.
func (c *Controller) redistributeLocked(r *room.Room) error {
	participants := r.Participants()

	cards, err := deck.Allocate(len(participants))
	if err != nil {
		return ErrDeckShortfall
	}

	assignment := make(map[string]int, len(participants))
	for i, p := range participants {
		assignment[p.ID] = cards[i]
	}
	r.Cards = assignment
	r.Started = true

	for _, p := range participants {
		// Disconnected participants keep their entry; the send just fails
		// silently and the card is replayed on reconnect.
		c.emitter.EmitToConn(p.ID, network.EventCardDistributed, CardPayload{Card: assignment[p.ID]})
	}

	c.emitter.EmitToRoom(r.ID, network.EventGameStarted, GameStartedPayload{
		Players:     playerList(r),
		PlayerCount: len(participants),
	})
	logger.Log.Infof("Distributed %d cards in room %s", len(participants), r.ID)
	return nil
}
