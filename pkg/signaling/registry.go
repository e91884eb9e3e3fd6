package signaling

import (
	"encoding/json"
	"sync"

	"github.com/seismic-health/telemed-signaling/pkg/util"
)

// Registry owns the room table. It is the single source of truth for
// membership: the pairing engine decides, the registry mutates.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	// autoCreate makes Join create a missing room instead of failing.
	autoCreate bool
}

// NewRegistry creates an empty registry.
func NewRegistry(autoCreate bool) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		autoCreate: autoCreate,
	}
}

// Create inserts an empty room. Fails with ErrRoomExists if the id is taken.
func (reg *Registry) Create(roomID string, metadata json.RawMessage) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[roomID]; exists {
		return nil, ErrRoomExists
	}
	room := NewRoom(roomID, metadata)
	reg.rooms[roomID] = room
	util.Info("Room %s created", roomID)
	return room, nil
}

// Get returns the room with the given id, if present.
func (reg *Registry) Get(roomID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// Lookup resolves a room for a join attempt, honoring the auto-create policy.
func (reg *Registry) Lookup(roomID string) (*Room, error) {
	if room, ok := reg.Get(roomID); ok {
		return room, nil
	}
	if !reg.autoCreate {
		return nil, ErrRoomNotFound
	}
	room, err := reg.Create(roomID, nil)
	if err != nil {
		// Lost a race with another create; the room exists now.
		if existing, ok := reg.Get(roomID); ok {
			return existing, nil
		}
		return nil, err
	}
	return room, nil
}

// AddMember seats a peer in a room and records the room on the peer.
func (reg *Registry) AddMember(room *Room, p *Peer) {
	room.add(p)
	p.RoomID = room.ID
	util.Info("Peer %s (%s %s) joined room %s", p.ID, p.Role, p.DisplayName, room.ID)
}

// RemoveMember removes a peer from a room, clearing the doctor seat if it was
// theirs, and deletes the room once empty. Idempotent: removing an absent
// peer is a no-op. Returns whether the peer was actually present.
func (reg *Registry) RemoveMember(roomID, peerID string) bool {
	room, ok := reg.Get(roomID)
	if !ok {
		return false
	}
	removed := room.remove(peerID)
	if removed {
		util.Info("Peer %s left room %s", peerID, roomID)
	}

	if room.IsEmpty() {
		reg.mu.Lock()
		if current, ok := reg.rooms[roomID]; ok && current.IsEmpty() {
			delete(reg.rooms, roomID)
			util.Info("Removed empty room %s", roomID)
		}
		reg.mu.Unlock()
	}
	return removed
}

// FindPeer returns the peer with the given id inside a room.
func (reg *Registry) FindPeer(roomID, peerID string) (*Peer, bool) {
	room, ok := reg.Get(roomID)
	if !ok {
		return nil, false
	}
	return room.Member(peerID)
}

// Snapshot lists a room's occupants. Nil for an unknown room.
func (reg *Registry) Snapshot(roomID string) []MemberInfo {
	room, ok := reg.Get(roomID)
	if !ok {
		return nil
	}
	return room.Snapshot()
}

// ActiveRooms returns the ids of all rooms currently in the table.
func (reg *Registry) ActiveRooms() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	return ids
}
