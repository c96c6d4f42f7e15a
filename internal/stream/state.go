package stream

// State is the lifecycle state of a live source.
type State int

const (
	// Disconnected means the last connection attempt failed or the link
	// dropped. A reconnect is pending unless the source was torn down.
	Disconnected State = iota

	// Connecting means a dial is in flight.
	Connecting

	// Connected means messages are flowing.
	Connected

	// Unsubscribed is the terminal state after Teardown or Close.
	Unsubscribed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Unsubscribed:
		return "unsubscribed"
	default:
		return "unknown"
	}
}

// IsLive reports whether messages are currently flowing.
func (s State) IsLive() bool {
	return s == Connected
}
