package notestore

import "github.com/dmitrijs2005/gophnotes/internal/client/models"

// State is the lifecycle state of the store.
type State int

const (
	// Uninitialized means there is no active session.
	Uninitialized State = iota
	// Loading means a session is active and its first fetch is in flight.
	Loading
	// Loaded means the list holds the result of the latest successful cycle.
	Loaded
	// Error means the session's first fetch failed and none has succeeded yet.
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is one published state of the store. Snapshots are never modified
// after publication; List must be treated as read-only.
type Snapshot struct {
	State State
	List  []*models.Note
	Err   error
}

// Find returns the note with the given id.
func (s Snapshot) Find(id uint64) (*models.Note, bool) {
	for _, n := range s.List {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}
