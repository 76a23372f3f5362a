package models

import "time"

// Note is the stored form of an encrypted note. EncryptedText is opaque to
// the server; Data is the plaintext metadata JSON written by the client.
type Note struct {
	ID            uint64
	Owner         string
	Data          string
	EncryptedText string
	Locked        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Rule grants Principal access to a note from When on (nil means at once).
type Rule struct {
	NoteID    uint64
	Principal string
	When      *time.Time
	WasRead   bool
}

// EffectiveAt reports whether the rule grants access at now.
func (r *Rule) EffectiveAt(now time.Time) bool {
	return r.When == nil || !r.When.After(now)
}

// HistoryEntry is one append-only audit record of a note.
type HistoryEntry struct {
	NoteID       uint64
	Action       string
	User         string
	RuleIdentity *string
	RuleWhen     *time.Time
	Labels       []string
	CreatedAt    time.Time
}

// History actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionLocked   = "locked"
	ActionShared   = "shared"
	ActionUnshared = "unshared"
	ActionRead     = "read"
)

// History labels.
const (
	LabelEveryone  = "everyone"
	LabelScheduled = "scheduled"
)

// NoteView is a note together with its rules and history, as returned to
// clients.
type NoteView struct {
	Note    *Note
	Rules   []Rule
	History []HistoryEntry
}

// ReadBy lists the identities that ever fetched the note key, in order of
// first read.
func (v *NoteView) ReadBy() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, h := range v.History {
		if h.Action != ActionRead {
			continue
		}
		if _, ok := seen[h.User]; ok {
			continue
		}
		seen[h.User] = struct{}{}
		out = append(out, h.User)
	}
	return out
}
