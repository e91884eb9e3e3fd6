package signaling

import (
	"github.com/seismic-health/telemed-signaling/pkg/util"
)

// Controller binds inbound peer events to the registry, pairing engine and
// relay, and emits the outcomes. Run processes all events on one goroutine,
// so mutations for a room are applied in arrival order and never interleave.
// Emits are non-blocking channel sends; nothing in the loop waits on a peer.
type Controller struct {
	rooms  *Registry
	engine *Engine
	relay  *Relay

	// peers is every connected peer by transport id, in or out of a room.
	// Touched only from the Run loop.
	peers map[string]*Peer

	register   chan *Peer
	unregister chan *Peer
	inbound    chan inboundEvent

	iceServers []string
}

type inboundEvent struct {
	peer *Peer
	msg  *Message
}

// NewController wires a controller over a room registry. The ICE server list
// is handed to each client on connect.
func NewController(rooms *Registry, iceServers []string) *Controller {
	c := &Controller{
		rooms:      rooms,
		engine:     NewEngine(rooms),
		peers:      make(map[string]*Peer),
		register:   make(chan *Peer),
		unregister: make(chan *Peer),
		inbound:    make(chan inboundEvent, 64),
		iceServers: iceServers,
	}
	c.relay = NewRelay(c)
	return c
}

// Lookup resolves a connected peer by id. Part of the PeerDirectory contract
// used by the relay.
func (c *Controller) Lookup(peerID string) (*Peer, bool) {
	p, ok := c.peers[peerID]
	return p, ok
}

// Register announces a new connection to the event loop.
func (c *Controller) Register(p *Peer) {
	c.register <- p
}

// Unregister announces a closed connection to the event loop. Callers must
// guarantee at most one call per connection (see Client.Close).
func (c *Controller) Unregister(p *Peer) {
	c.unregister <- p
}

// Submit hands an inbound message to the event loop.
func (c *Controller) Submit(p *Peer, msg *Message) {
	c.inbound <- inboundEvent{peer: p, msg: msg}
}

// Run is the controller's event loop. It is the only goroutine that mutates
// room state.
func (c *Controller) Run() {
	for {
		select {
		case p := <-c.register:
			c.handleRegister(p)
		case p := <-c.unregister:
			c.handleDisconnect(p)
		case in := <-c.inbound:
			c.dispatch(in.peer, in.msg)
		}
	}
}

func (c *Controller) handleRegister(p *Peer) {
	c.peers[p.ID] = p
	util.Info("Peer %s connected", p.ID)
	p.Deliver(&Message{
		Type:       EventWelcome,
		PeerID:     p.ID,
		ICEServers: c.iceServers,
	})
}

// handleDisconnect is the single cleanup path for a closed connection. It
// degrades to a no-op if the peer already left its room.
func (c *Controller) handleDisconnect(p *Peer) {
	delete(c.peers, p.ID)
	c.departRoom(p)
	util.Info("Peer %s disconnected", p.ID)
}

func (c *Controller) dispatch(p *Peer, msg *Message) {
	switch msg.Type {
	case EventCreateRoom:
		c.handleCreateRoom(p, msg)
	case EventJoinRoom:
		c.handleJoinRoom(p, msg)
	case EventCallAccepted:
		c.handleCallAccepted(p, msg)
	case EventCallRejected:
		c.handleCallRejected(p, msg)
	case EventOffer, EventAnswer, EventICECandidate:
		c.handleSignal(p, msg)
	case EventLeaveRoom:
		c.departRoom(p)
	default:
		util.Warn("Peer %s sent unknown message type %q", p.ID, msg.Type)
		c.rejectMessage(p, "unknown message type")
	}
}

func (c *Controller) handleCreateRoom(p *Peer, msg *Message) {
	if msg.RoomID == "" || msg.DisplayName == "" || !msg.Role.Valid() {
		c.rejectMessage(p, "createRoom requires roomId, displayName and a valid role")
		return
	}
	if p.RoomID != "" {
		c.rejectMessage(p, "already in a room")
		return
	}

	if _, err := c.rooms.Create(msg.RoomID, msg.Metadata); err != nil {
		c.replyFailure(p, msg.RoomID, err)
		return
	}
	p.Deliver(&Message{Type: EventRoomCreated, RoomID: msg.RoomID})

	c.seatPeer(p, msg)
}

func (c *Controller) handleJoinRoom(p *Peer, msg *Message) {
	if msg.RoomID == "" || msg.DisplayName == "" || !msg.Role.Valid() {
		c.rejectMessage(p, "joinRoom requires roomId, displayName and a valid role")
		return
	}
	if p.RoomID != "" {
		c.rejectMessage(p, "already in a room")
		return
	}

	c.seatPeer(p, msg)
}

// seatPeer runs the pairing transition for an admitted join and emits the
// outcome to both sides.
func (c *Controller) seatPeer(p *Peer, msg *Message) {
	p.DisplayName = msg.DisplayName
	p.Role = msg.Role

	result, err := c.engine.Join(msg.RoomID, p)
	if err != nil {
		c.replyFailure(p, msg.RoomID, err)
		return
	}

	switch result.State {
	case StateWaitingForCounterpart:
		p.Deliver(&Message{Type: EventWaitingForCounterpart, RoomID: msg.RoomID})

	case StateAwaitingAcceptance:
		doctor := result.Counterpart
		doctor.Deliver(&Message{
			Type:        EventUserJoined,
			RoomID:      msg.RoomID,
			PeerID:      p.ID,
			DisplayName: p.DisplayName,
		})
		p.Deliver(&Message{
			Type:        EventWaitingToBeAcceptedBy,
			RoomID:      msg.RoomID,
			PeerID:      doctor.ID,
			DisplayName: doctor.DisplayName,
		})

	case StatePaired:
		patient := result.Counterpart
		p.Deliver(&Message{
			Type:        EventOtherUserID,
			RoomID:      msg.RoomID,
			PeerID:      patient.ID,
			DisplayName: patient.DisplayName,
		})
		patient.Deliver(&Message{
			Type:        EventAcceptedBy,
			RoomID:      msg.RoomID,
			PeerID:      p.ID,
			DisplayName: p.DisplayName,
		})
	}

	p.Deliver(&Message{
		Type:    EventRoomMembers,
		RoomID:  msg.RoomID,
		Members: c.rooms.Snapshot(msg.RoomID),
	})
}

func (c *Controller) handleCallAccepted(p *Peer, msg *Message) {
	if msg.RoomID == "" {
		c.rejectMessage(p, "callAccepted requires roomId")
		return
	}

	pair, err := c.engine.Accept(msg.RoomID, p)
	if err != nil {
		c.replyFailure(p, msg.RoomID, err)
		return
	}
	if pair == nil {
		util.Debug("Peer %s sent callAccepted for room %s outside acceptance window", p.ID, msg.RoomID)
		return
	}

	pair.Doctor.Deliver(&Message{
		Type:        EventOtherUserID,
		RoomID:      msg.RoomID,
		PeerID:      pair.Patient.ID,
		DisplayName: pair.Patient.DisplayName,
	})
	pair.Patient.Deliver(&Message{
		Type:        EventAcceptedBy,
		RoomID:      msg.RoomID,
		PeerID:      pair.Doctor.ID,
		DisplayName: pair.Doctor.DisplayName,
	})
}

func (c *Controller) handleCallRejected(p *Peer, msg *Message) {
	if msg.RoomID == "" {
		c.rejectMessage(p, "callRejected requires roomId")
		return
	}

	pair, err := c.engine.Reject(msg.RoomID, p)
	if err != nil {
		c.replyFailure(p, msg.RoomID, err)
		return
	}
	if pair == nil {
		util.Debug("Peer %s sent callRejected for room %s outside acceptance window", p.ID, msg.RoomID)
		return
	}

	if pair.Patient != nil {
		pair.Patient.Deliver(&Message{
			Type:        EventCallRejected,
			RoomID:      msg.RoomID,
			PeerID:      pair.Doctor.ID,
			DisplayName: pair.Doctor.DisplayName,
		})
	}
}

func (c *Controller) handleSignal(p *Peer, msg *Message) {
	if msg.Target == "" {
		c.rejectMessage(p, msg.Type+" requires a target peer id")
		return
	}

	if err := c.relay.Forward(msg.Type, p, msg); err != nil {
		c.replyFailure(p, msg.RoomID, err)
	}
}

// departRoom removes the peer from its room, if any, and tells the survivor.
// Used by both leaveRoom and disconnect; idempotent.
func (c *Controller) departRoom(p *Peer) {
	if p.RoomID == "" {
		return
	}
	roomID := p.RoomID
	p.RoomID = ""

	result := c.engine.Depart(roomID, p.ID)
	if result == nil || result.Survivor == nil {
		return
	}
	result.Survivor.Deliver(&Message{
		Type:        EventUserLeft,
		RoomID:      roomID,
		PeerID:      p.ID,
		DisplayName: p.DisplayName,
	})
}

func (c *Controller) replyFailure(p *Peer, roomID string, err error) {
	util.Debug("Peer %s: %v", p.ID, err)
	p.Deliver(&Message{
		Type:   failureEvent(err),
		RoomID: roomID,
		Reason: err.Error(),
	})
}

func (c *Controller) rejectMessage(p *Peer, reason string) {
	p.Deliver(&Message{Type: EventError, Reason: reason})
}
