package proto

// PrincipalRule is the access rule stored for one grantee of a note.
// When is the earliest moment (Unix ns) the grant takes effect; nil means
// immediately.
type PrincipalRule struct {
	When    *uint64 `json:"when,omitempty"`
	WasRead bool    `json:"was_read"`
}

// RuleSnapshot is the access rule as it was when a history entry was written.
type RuleSnapshot struct {
	Identity string  `json:"identity"`
	When     *uint64 `json:"when,omitempty"`
}

type HistoryEntry struct {
	Action    string        `json:"action"`
	User      string        `json:"user"`
	Rule      *RuleSnapshot `json:"rule,omitempty"`
	Labels    []string      `json:"labels"`
	CreatedAt uint64        `json:"created_at"`
}

// EncryptedNote is the transport form of a note. EncryptedText is opaque to
// the server; Data is plaintext JSON metadata.
type EncryptedNote struct {
	ID            uint64                   `json:"id"`
	EncryptedText string                   `json:"encrypted_text"`
	Data          string                   `json:"data,omitempty"`
	Owner         string                   `json:"owner"`
	Users         map[string]PrincipalRule `json:"users"`
	Locked        bool                     `json:"locked"`
	ReadBy        []string                 `json:"read_by"`
	CreatedAt     uint64                   `json:"created_at"`
	UpdatedAt     uint64                   `json:"updated_at"`
	History       []HistoryEntry           `json:"history"`
}

type CreateNoteRequest struct{}

type CreateNoteResponse struct {
	ID uint64 `json:"id"`
}

type UpdateNoteRequest struct {
	ID            uint64 `json:"id"`
	Data          string `json:"data"`
	EncryptedText string `json:"encrypted_text"`
}

type UpdateNoteResponse struct{}

type GetNotesRequest struct{}

type GetNotesResponse struct {
	Notes []*EncryptedNote `json:"notes"`
}

type RefreshNoteRequest struct {
	ID uint64 `json:"id"`
}

type RefreshNoteResponse struct {
	Note *EncryptedNote `json:"note"`
}

// AddUserRequest grants access to a note. A nil User grants to everyone,
// a nil When grants from now on.
type AddUserRequest struct {
	ID   uint64  `json:"id"`
	User *string `json:"user,omitempty"`
	When *uint64 `json:"when,omitempty"`
}

type AddUserResponse struct{}

type RemoveUserRequest struct {
	ID   uint64  `json:"id"`
	User *string `json:"user,omitempty"`
}

type RemoveUserResponse struct{}

type DeleteNoteRequest struct {
	ID uint64 `json:"id"`
}

type DeleteNoteResponse struct{}

// EncryptedSymmetricKeyForNoteRequest asks the key oracle for the key of a
// note, wrapped for TransportPublicKey (X25519).
type EncryptedSymmetricKeyForNoteRequest struct {
	ID                 uint64 `json:"id"`
	TransportPublicKey []byte `json:"transport_public_key"`
}

type EncryptedSymmetricKeyForNoteResponse struct {
	EncryptedKey []byte `json:"encrypted_key"`
}

type WhoamiRequest struct{}

type WhoamiResponse struct {
	Identity string `json:"identity"`
}
