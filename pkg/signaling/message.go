package signaling

import "encoding/json"

// Role identifies which side of a consultation a peer is on.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// Inbound event types accepted from a peer channel.
const (
	EventCreateRoom   = "createRoom"
	EventJoinRoom     = "joinRoom"
	EventCallAccepted = "callAccepted"
	EventCallRejected = "callRejected"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "iceCandidate"
	EventLeaveRoom    = "leaveRoom"
)

// Outbound event types. These names are a protocol contract with the browser
// client and must not change.
const (
	EventWelcome                = "welcome"
	EventRoomCreated            = "roomCreated"
	EventRoomExists             = "roomExists"
	EventRoomNotFound           = "roomNotFound"
	EventRoomMembers            = "roomMembers"
	EventWaitingForCounterpart  = "waitingForCounterpart"
	EventUserJoined             = "userJoined"
	EventWaitingToBeAcceptedBy  = "waitingToBeAcceptedBy"
	EventOtherUserID            = "otherUserId"
	EventAcceptedBy             = "acceptedBy"
	EventInvalidRoleCombination = "invalidRoleCombination"
	EventUnauthorizedAcceptance = "unauthorizedAcceptance"
	EventTargetNotConnected     = "targetNotConnected"
	EventUserLeft               = "userLeft"
	EventError                  = "error"
)

// MemberInfo describes one room occupant in a roomMembers snapshot.
type MemberInfo struct {
	PeerID      string `json:"peerId"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

// Message is the wire format for every client/server exchange. SDP and ICE
// payloads stay raw: the relay forwards them verbatim and never inspects them.
type Message struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`

	// From is always stamped by the server on relayed messages so a
	// recipient can trust the sender id.
	From string `json:"from,omitempty"`

	// Target is the recipient peer id for offer/answer/iceCandidate.
	Target string `json:"target,omitempty"`

	PeerID      string `json:"peerId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Role        Role   `json:"role,omitempty"`

	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`

	Members    []MemberInfo `json:"members,omitempty"`
	ICEServers []string     `json:"iceServers,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}
