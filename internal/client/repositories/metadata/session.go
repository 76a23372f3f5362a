package metadata

import (
	"context"
)

const (
	keyUsername = "username"
	keyIdentity = "identity"
)

// Session is what the CLI remembers about the last successful sign-in.
// It holds no secrets.
type Session struct {
	Username string
	Identity string
}

// SaveSession writes s through r. Use a transactional r to store it atomically.
func SaveSession(ctx context.Context, r Repository, s Session) error {
	if err := r.Set(ctx, keyUsername, []byte(s.Username)); err != nil {
		return err
	}
	return r.Set(ctx, keyIdentity, []byte(s.Identity))
}

// LoadSession returns the remembered session, or nil if there is none.
func LoadSession(ctx context.Context, r Repository) (*Session, error) {
	username, err := r.Get(ctx, keyUsername)
	if err != nil {
		return nil, err
	}
	if username == nil {
		return nil, nil
	}
	identity, err := r.Get(ctx, keyIdentity)
	if err != nil {
		return nil, err
	}
	return &Session{Username: string(username), Identity: string(identity)}, nil
}
