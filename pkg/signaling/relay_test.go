package signaling

import (
	"encoding/json"
	"testing"
)

type mapDirectory map[string]*Peer

func (d mapDirectory) Lookup(peerID string) (*Peer, bool) {
	p, ok := d[peerID]
	return p, ok
}

func TestForwardStampsSender(t *testing.T) {
	targetRec := &recorder{}
	dir := mapDirectory{
		"target": NewPeer("target", targetRec),
	}
	relay := NewRelay(dir)
	from := NewPeer("sender", &recorder{})

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 UDP ..."}`)
	err := relay.Forward(EventICECandidate, from, &Message{
		Type: EventICECandidate,
		// A spoofed From must be overwritten by the relay.
		From:      "someone-else",
		Target:    "target",
		Candidate: candidate,
	})
	if err != nil {
		t.Fatalf("Forward returned error: %v", err)
	}

	if len(targetRec.msgs) != 1 {
		t.Fatalf("Expected exactly one delivery, got %d", len(targetRec.msgs))
	}
	got := targetRec.msgs[0]
	if got.From != "sender" {
		t.Errorf("Expected sender id stamped server-side, got %q", got.From)
	}
	if string(got.Candidate) != string(candidate) {
		t.Errorf("Expected candidate forwarded verbatim, got %s", got.Candidate)
	}
}

func TestForwardUnknownTarget(t *testing.T) {
	relay := NewRelay(mapDirectory{})
	from := NewPeer("sender", &recorder{})

	err := relay.Forward(EventOffer, from, &Message{Type: EventOffer, Target: "ghost"})
	if err != ErrTargetNotConnected {
		t.Errorf("Expected ErrTargetNotConnected, got %v", err)
	}
}
