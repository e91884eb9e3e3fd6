package signaling

// Engine encodes the role-gated pairing rule and the accept/reject handshake.
// A room seats exactly one doctor and one patient:
//
//	Empty -> WaitingForCounterpart          first join
//	WaitingForCounterpart -> Awaiting...    patient joins a waiting doctor
//	WaitingForCounterpart -> Paired         doctor joins a waiting patient
//	AwaitingAcceptance -> Paired            callAccepted from the doctor
//	AwaitingAcceptance -> Waiting...        callRejected removes the doctor
//	any -> WaitingForCounterpart / Empty    leave or disconnect
//
// Any (state, event) pair not listed is a no-op or an explicit rejection.
// The engine decides; all membership mutation goes through the registry.
type Engine struct {
	rooms *Registry
}

// NewEngine creates a pairing engine over a registry.
func NewEngine(rooms *Registry) *Engine {
	return &Engine{rooms: rooms}
}

// JoinResult describes the outcome of an admitted join.
type JoinResult struct {
	Room  *Room
	State PairingState

	// Counterpart is the peer already waiting in the room, nil when the
	// joiner is alone.
	Counterpart *Peer

	// AutoAccepted is set when a doctor joined a waiting patient and the
	// explicit acceptance step was skipped.
	AutoAccepted bool
}

// PairResult names both ends of a completed handshake.
type PairResult struct {
	Doctor  *Peer
	Patient *Peer
}

// DepartResult describes room fallout after a leave or disconnect.
type DepartResult struct {
	RoomID string

	// Survivor is the peer still in the room, nil if it emptied out.
	Survivor *Peer
}

// Join admits a peer into a room if the role combination allows it. The
// offending peer is never seated on rejection.
func (e *Engine) Join(roomID string, p *Peer) (*JoinResult, error) {
	if p.RoomID != "" {
		return nil, ErrAlreadyInRoom
	}

	room, err := e.rooms.Lookup(roomID)
	if err != nil {
		return nil, err
	}

	switch p.Role {
	case RoleDoctor:
		if room.Doctor() != nil {
			return nil, ErrInvalidRoleCombination
		}
	case RolePatient:
		if room.Patient() != nil {
			return nil, ErrInvalidRoleCombination
		}
	default:
		return nil, ErrInvalidRoleCombination
	}

	counterpart := room.Doctor()
	if p.Role == RoleDoctor {
		counterpart = room.Patient()
	}

	e.rooms.AddMember(room, p)

	result := &JoinResult{Room: room, Counterpart: counterpart}
	switch {
	case counterpart == nil:
		result.State = StateWaitingForCounterpart
	case p.Role == RoleDoctor:
		// Doctors are authoritative acceptors: joining a waiting
		// patient pairs immediately.
		result.State = StatePaired
		result.AutoAccepted = true
	default:
		result.State = StateAwaitingAcceptance
	}
	room.setState(result.State)
	return result, nil
}

// Accept completes the handshake. Only the room's doctor may accept while a
// patient is waiting; acceptance in any other state is a no-op.
func (e *Engine) Accept(roomID string, from *Peer) (*PairResult, error) {
	room, ok := e.rooms.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.State() != StateAwaitingAcceptance {
		return nil, nil
	}

	doctor := room.Doctor()
	if doctor == nil || doctor.ID != from.ID {
		return nil, ErrUnauthorizedAcceptance
	}
	patient := room.Patient()
	if patient == nil {
		return nil, nil
	}

	room.setState(StatePaired)
	return &PairResult{Doctor: doctor, Patient: patient}, nil
}

// Reject declines a waiting patient. The rejecting doctor is removed from the
// room and the patient returns to waiting. Same authorization as Accept.
func (e *Engine) Reject(roomID string, from *Peer) (*PairResult, error) {
	room, ok := e.rooms.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.State() != StateAwaitingAcceptance {
		return nil, nil
	}

	doctor := room.Doctor()
	if doctor == nil || doctor.ID != from.ID {
		return nil, ErrUnauthorizedAcceptance
	}
	patient := room.Patient()

	e.rooms.RemoveMember(roomID, doctor.ID)
	doctor.RoomID = ""
	room.setState(StateWaitingForCounterpart)
	return &PairResult{Doctor: doctor, Patient: patient}, nil
}

// Depart removes a peer on leave or disconnect and unwinds the room. Safe to
// call twice: a second call for the same peer returns nil.
func (e *Engine) Depart(roomID, peerID string) *DepartResult {
	room, ok := e.rooms.Get(roomID)
	if !ok {
		return nil
	}

	survivor := room.Counterpart(peerID)
	if !e.rooms.RemoveMember(roomID, peerID) {
		return nil
	}

	if survivor != nil {
		room.setState(StateWaitingForCounterpart)
	} else {
		room.setState(StateEmpty)
	}
	return &DepartResult{RoomID: roomID, Survivor: survivor}
}
