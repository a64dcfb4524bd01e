package session

import "errors"

// State is the render state of a Session.
type State int

const (
	// Idle accepts renders, restores and live updates.
	Idle State = iota
	// Rendering means a full re-render is in flight; further renders are
	// dropped.
	Rendering
	// RestoringData means a bulk restore just wrote the form; live updates
	// are suppressed until the settle window elapses.
	RestoringData
)

func (s State) String() string {
	switch s {
	case Rendering:
		return "rendering"
	case RestoringData:
		return "restoring-data"
	default:
		return "idle"
	}
}

var (
	// ErrBusy reports a render requested while the session is not idle. The
	// request is dropped, not queued; callers re-trigger it.
	ErrBusy = errors.New("session: busy")
	// ErrNoSource reports an operation that needs the template source before
	// Load succeeded.
	ErrNoSource = errors.New("session: template source not loaded")
)
