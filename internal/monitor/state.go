package monitor

// State is the phase the monitor loop is in.
type State int

const (
	Idle State = iota
	FetchDirectory
	Reconcile
	Checkpoint
	Sleep
	Backoff
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchDirectory:
		return "fetch_directory"
	case Reconcile:
		return "reconcile"
	case Checkpoint:
		return "checkpoint"
	case Sleep:
		return "sleep"
	case Backoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
