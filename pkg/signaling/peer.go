package signaling

// Sender delivers outbound messages to a connected peer. Implementations must
// never block: delivery is fire-and-forget from the caller's perspective.
type Sender interface {
	Deliver(msg *Message)
}

// Peer is one connected participant's session. The id is assigned by the
// transport layer and stable for the connection's lifetime; display name,
// role and room are set when the peer joins a room.
type Peer struct {
	ID          string
	DisplayName string
	Role        Role
	RoomID      string

	sender Sender
}

// NewPeer wraps a transport channel in a Peer record.
func NewPeer(id string, sender Sender) *Peer {
	return &Peer{ID: id, sender: sender}
}

// Deliver forwards a message to the peer's channel, if any.
func (p *Peer) Deliver(msg *Message) {
	if p.sender != nil {
		p.sender.Deliver(msg)
	}
}

// Info returns the peer's occupant view for room snapshots.
func (p *Peer) Info() MemberInfo {
	return MemberInfo{PeerID: p.ID, DisplayName: p.DisplayName, Role: p.Role}
}
