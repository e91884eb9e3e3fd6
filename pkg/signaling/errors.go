package signaling

import "errors"

// Peer-local failure conditions. All are recoverable: they are reported back
// to the originating peer as a named event and never touch other rooms.
var (
	ErrRoomNotFound           = errors.New("room not found")
	ErrRoomExists             = errors.New("room already exists")
	ErrInvalidRoleCombination = errors.New("invalid role combination")
	ErrUnauthorizedAcceptance = errors.New("unauthorized acceptance")
	ErrTargetNotConnected     = errors.New("target not connected")
	ErrAlreadyInRoom          = errors.New("peer already in a room")
)

// failureEvent maps a known error to the event name sent to the offending
// peer. Unknown errors fall back to the generic error event.
func failureEvent(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return EventRoomNotFound
	case errors.Is(err, ErrRoomExists):
		return EventRoomExists
	case errors.Is(err, ErrInvalidRoleCombination):
		return EventInvalidRoleCombination
	case errors.Is(err, ErrUnauthorizedAcceptance):
		return EventUnauthorizedAcceptance
	case errors.Is(err, ErrTargetNotConnected):
		return EventTargetNotConnected
	default:
		return EventError
	}
}
