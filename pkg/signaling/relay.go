package signaling

// PeerDirectory resolves a peer id to a live connection.
type PeerDirectory interface {
	Lookup(peerID string) (*Peer, bool)
}

// Relay forwards negotiation payloads between two peers that already know
// each other's ids. It is stateless and never inspects SDP or ICE contents;
// its only guarantee is routing correctness: the payload reaches exactly the
// target peer, or nobody.
type Relay struct {
	dir PeerDirectory
}

// NewRelay creates a relay over a peer directory.
func NewRelay(dir PeerDirectory) *Relay {
	return &Relay{dir: dir}
}

// Forward delivers an offer/answer/iceCandidate payload to the target peer,
// stamped with the sender's id so the recipient can reply. Returns
// ErrTargetNotConnected when the target has no live channel; the caller
// decides whether to inform the sender.
func (r *Relay) Forward(kind string, from *Peer, msg *Message) error {
	target, ok := r.dir.Lookup(msg.Target)
	if !ok {
		return ErrTargetNotConnected
	}

	target.Deliver(&Message{
		Type:      kind,
		From:      from.ID,
		SDP:       msg.SDP,
		Candidate: msg.Candidate,
	})
	return nil
}
