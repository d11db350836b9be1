package session

// State is the connection state of a controller.
type State int

const (
	// Disconnected is the initial and terminal state.
	Disconnected State = iota
	// Connecting covers device acquisition and the transport handshake.
	Connecting
	// Connected means the transport is open and media is flowing.
	Connected
	// Errored is terminal for that session instance; the transcript
	// accumulated so far stays readable.
	Errored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Errored:
		return "error"
	default:
		return "unknown"
	}
}

// Active reports whether a session currently holds resources.
func (s State) Active() bool {
	return s == Connecting || s == Connected
}
