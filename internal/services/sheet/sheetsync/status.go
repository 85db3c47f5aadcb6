package sheetsync

// State is the synchronization phase of a sheet.
type State int

const (
	// StateLoading means a request is in flight.
	StateLoading State = iota
	// StateReady means the last request settled successfully.
	StateReady
	// StateError means the last request failed.
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the published synchronization status. Message is set only in
// StateError and is already localized for display.
type Status struct {
	State   State
	Message string
}
