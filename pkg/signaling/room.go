package signaling

import (
	"encoding/json"
	"sync"
	"time"
)

// PairingState is the derived call-setup state of a room.
type PairingState int

const (
	// StateEmpty: no members.
	StateEmpty PairingState = iota

	// StateWaitingForCounterpart: one peer present, no compatible role yet.
	StateWaitingForCounterpart

	// StateAwaitingAcceptance: a patient has requested and the doctor has
	// been notified but not responded.
	StateAwaitingAcceptance

	// StatePaired: doctor and patient linked, negotiation allowed.
	StatePaired
)

func (s PairingState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateWaitingForCounterpart:
		return "waitingForCounterpart"
	case StateAwaitingAcceptance:
		return "awaitingAcceptance"
	case StatePaired:
		return "paired"
	}
	return "unknown"
}

// Room groups the peers of one consultation. It holds at most one doctor and
// one patient at a time. All mutation goes through the Registry.
type Room struct {
	ID        string
	Metadata  json.RawMessage
	CreatedAt time.Time

	mu       sync.RWMutex
	members  map[string]*Peer
	doctorID string
	state    PairingState
}

// NewRoom creates an empty room with optional appointment metadata.
func NewRoom(id string, metadata json.RawMessage) *Room {
	return &Room{
		ID:        id,
		Metadata:  metadata,
		CreatedAt: time.Now(),
		members:   make(map[string]*Peer),
		state:     StateEmpty,
	}
}

// State returns the current pairing state.
func (r *Room) State() PairingState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Room) setState(s PairingState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}

// Member returns the peer with the given id, if present.
func (r *Room) Member(peerID string) (*Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.members[peerID]
	return p, ok
}

// Doctor returns the room's doctor, or nil.
func (r *Room) Doctor() *Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.doctorID == "" {
		return nil
	}
	return r.members[r.doctorID]
}

// Patient returns the room's patient, or nil.
func (r *Room) Patient() *Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, p := range r.members {
		if id != r.doctorID {
			return p
		}
	}
	return nil
}

// Counterpart returns the other member of the room, or nil.
func (r *Room) Counterpart(peerID string) *Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, p := range r.members {
		if id != peerID {
			return p
		}
	}
	return nil
}

func (r *Room) add(p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[p.ID] = p
	if p.Role == RoleDoctor {
		r.doctorID = p.ID
	}
}

// remove deletes the peer and clears the doctor seat if it was theirs.
// Safe to call for an absent peer.
func (r *Room) remove(peerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[peerID]; !ok {
		return false
	}
	delete(r.members, peerID)
	if r.doctorID == peerID {
		r.doctorID = ""
	}
	return true
}

// MemberCount returns the number of occupants.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// IsEmpty reports whether the room has no occupants.
func (r *Room) IsEmpty() bool {
	return r.MemberCount() == 0
}

// Snapshot lists the current occupants for presentation to a new joiner.
func (r *Room) Snapshot() []MemberInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]MemberInfo, 0, len(r.members))
	for _, p := range r.members {
		members = append(members, p.Info())
	}
	return members
}
