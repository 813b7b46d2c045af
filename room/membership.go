// room/membership.go
package room

import (
	"time"
)

// Membership mutations. Callers hold the room lock; each operation leaves the
// master invariant intact: a non-empty room has exactly one master and
// Room.MasterID names it.

// AddParticipant inserts an active participant. The first participant of a
// room becomes its master.
func (r *Room) AddParticipant(connID, name string) *Participant {
	now := time.Now()
	p := &Participant{
		ID:       connID,
		Name:     name,
		State:    StateActive,
		JoinedAt: now,
		LastSeen: now,
	}
	if len(r.participants) == 0 {
		p.IsMaster = true
		r.MasterID = connID
	}
	r.participants[connID] = p
	r.order = append(r.order, connID)
	return p
}

// MarkDisconnected flags the participant as disconnected and stamps the
// grace-window start. The participant and its card stay in the room.
func (r *Room) MarkDisconnected(connID string) bool {
	p, exists := r.participants[connID]
	if !exists {
		return false
	}
	p.State = StateDisconnected
	p.DisconnectedAt = time.Now()
	p.PreviousID = connID
	return true
}

// ReconcileReconnect re-keys the participant matching name onto the new
// connection id: membership entry, card entry and, when it was the master,
// Room.MasterID all migrate. The transport hands out a fresh id per
// connection, so the match is by display name. No match means no mutation.
func (r *Room) ReconcileReconnect(newConnID, name string) (*Participant, bool) {
	p, exists := r.FindByName(name)
	if !exists {
		return nil, false
	}

	oldID := p.ID
	delete(r.participants, oldID)
	for i, id := range r.order {
		if id == oldID {
			r.order[i] = newConnID
			break
		}
	}

	p.ID = newConnID
	p.State = StateActive
	p.LastSeen = time.Now()
	r.participants[newConnID] = p

	if card, ok := r.Cards[oldID]; ok {
		delete(r.Cards, oldID)
		r.Cards[newConnID] = card
	}
	if p.IsMaster {
		r.MasterID = newConnID
	}
	return p, true
}

// RemoveParticipant evicts a participant immediately, card included.
func (r *Room) RemoveParticipant(connID string) (*Participant, bool) {
	p, exists := r.participants[connID]
	if !exists {
		return nil, false
	}
	delete(r.participants, connID)
	delete(r.Cards, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// ElectMaster promotes the earliest-joined remaining participant. Join order
// keeps the choice deterministic; map iteration order would not.
func (r *Room) ElectMaster() *Participant {
	if len(r.order) == 0 {
		r.MasterID = ""
		return nil
	}
	for _, p := range r.participants {
		p.IsMaster = false
	}
	master := r.participants[r.order[0]]
	master.IsMaster = true
	r.MasterID = master.ID
	return master
}
