package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInvalidInput = errors.New("invalid input")

	// Note rules enforced by the remote store.
	ErrNoteLocked          = errors.New("note is locked")
	ErrNotOwner            = errors.New("only the owner can do this")
	ErrTooManyNotes        = errors.New("note limit reached")
	ErrTooManyShares       = errors.New("share limit reached")
	ErrNoteTooLarge        = errors.New("note too large")
	ErrAnonymousNotAllowed = errors.New("anonymous caller not allowed")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// CryptoError reports a key derivation or encryption failure. It is fatal to
// the single operation only.
type CryptoError struct {
	Op     string
	NoteID uint64
	Err    error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto %s (note %d): %v", e.Op, e.NoteID, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// DecryptionError is a permanent decrypt failure, reported after the single
// stale-key retry has been used up (or was not applicable).
type DecryptionError struct {
	NoteID  uint64
	Retried bool
	Err     error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decrypt note %d (retried=%t): %v", e.NoteID, e.Retried, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// MalformedPayloadError is a JSON parse failure of decrypted content or of the
// plaintext metadata of a note.
type MalformedPayloadError struct {
	Field  string
	NoteID uint64
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed %s of note %d: %v", e.Field, e.NoteID, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// TransportError is a failed call to the remote store.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
