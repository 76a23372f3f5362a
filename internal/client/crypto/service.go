// Package crypto implements the client side of note encryption: note keys are
// obtained from the server's key oracle, cached per (note, owner), and used to
// seal and open note content.
package crypto

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"golang.org/x/sync/singleflight"
)

// StaleKeyFunc fetches a fresh copy of a note after its ciphertext failed to
// open under the cached key. It is called at most once per Decrypt.
type StaleKeyFunc func(ctx context.Context, noteID uint64) (*pb.EncryptedNote, error)

// CryptoService seals and opens note content bound to (noteID, owner).
type CryptoService interface {
	Encrypt(ctx context.Context, noteID uint64, owner string, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, noteID uint64, owner string, ciphertext string, onStaleKey StaleKeyFunc) ([]byte, error)
}

// KeyOracle derives the key of a note on the server and returns it wrapped for
// transportPublicKey.
type KeyOracle interface {
	EncryptedSymmetricKeyForNote(ctx context.Context, noteID uint64, transportPublicKey []byte) ([]byte, error)
}

type noteKey struct {
	id    uint64
	owner string
}

// Service is the CryptoService backed by a KeyOracle. It is safe for
// concurrent use; concurrent requests for the same key share one derivation.
type Service struct {
	oracle KeyOracle
	logger logging.Logger

	mu   sync.Mutex
	keys map[noteKey][]byte
	// bumped by Reset; derivations started earlier are not cached
	gen uint64

	derive singleflight.Group
}

func NewService(oracle KeyOracle, logger logging.Logger) *Service {
	return &Service{
		oracle: oracle,
		logger: logger.With("module", "crypto"),
		keys:   make(map[noteKey][]byte),
	}
}

func (s *Service) Encrypt(ctx context.Context, noteID uint64, owner string, plaintext []byte) (string, error) {
	if noteID == 0 {
		return "", &common.CryptoError{Op: "encrypt", NoteID: noteID, Err: errors.New("note has no id yet")}
	}

	key, err := s.key(ctx, noteID, owner)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	sealed, err := cryptox.Seal(key, plaintext)
	if err != nil {
		return "", &common.CryptoError{Op: "encrypt", NoteID: noteID, Err: err}
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens ciphertext with the cached key of (noteID, owner). When the
// message does not authenticate, the key is treated as stale: it is evicted,
// onStaleKey supplies a fresh ciphertext, and decryption is retried exactly
// once with a newly derived key.
func (s *Service) Decrypt(ctx context.Context, noteID uint64, owner string, ciphertext string, onStaleKey StaleKeyFunc) ([]byte, error) {
	plaintext, err := s.open(ctx, noteID, owner, ciphertext)
	if err == nil || !isStaleKey(err) {
		return plaintext, err
	}

	s.Evict(noteID, owner)
	if onStaleKey == nil {
		return nil, err
	}

	s.logger.Debug(ctx, "stale note key, refreshing", "note_id", noteID)

	refreshed, rerr := onStaleKey(ctx, noteID)
	if rerr != nil {
		return nil, &common.DecryptionError{NoteID: noteID, Retried: true, Err: fmt.Errorf("refresh note: %w", rerr)}
	}
	if refreshed == nil {
		return nil, &common.DecryptionError{NoteID: noteID, Retried: true, Err: common.ErrorNotFound}
	}

	plaintext, err = s.open(ctx, noteID, owner, refreshed.EncryptedText)
	if err != nil {
		var de *common.DecryptionError
		if errors.As(err, &de) {
			de.Retried = true
			s.Evict(noteID, owner)
			return nil, err
		}
		return nil, &common.DecryptionError{NoteID: noteID, Retried: true, Err: err}
	}
	return plaintext, nil
}

// isStaleKey reports whether err is a ciphertext that failed to authenticate,
// as opposed to malformed input or a failed key derivation.
func isStaleKey(err error) bool {
	var de *common.DecryptionError
	return errors.As(err, &de) && errors.Is(de.Err, cryptox.ErrAuthentication)
}

func (s *Service) open(ctx context.Context, noteID uint64, owner string, ciphertext string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, &common.DecryptionError{NoteID: noteID, Err: fmt.Errorf("%w: %v", cryptox.ErrMalformedCiphertext, err)}
	}

	key, err := s.key(ctx, noteID, owner)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	plaintext, err := cryptox.Open(key, sealed)
	if err != nil {
		return nil, &common.DecryptionError{NoteID: noteID, Err: err}
	}
	return plaintext, nil
}

// key returns a private copy of the key of (noteID, owner), deriving it
// through the oracle on a miss. The caller owns the copy and wipes it.
func (s *Service) key(ctx context.Context, noteID uint64, owner string) ([]byte, error) {
	id := noteKey{id: noteID, owner: owner}

	s.mu.Lock()
	k, ok := s.keys[id]
	if ok {
		k = bytes.Clone(k)
	}
	gen := s.gen
	s.mu.Unlock()
	if ok {
		return k, nil
	}

	flight := strconv.FormatUint(gen, 10) + "/" + strconv.FormatUint(noteID, 10) + "/" + owner
	v, err, _ := s.derive.Do(flight, func() (any, error) {
		k, err := s.fetchKey(ctx, noteID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			s.logger.Debug(ctx, "session reset during key derivation, not caching", "note_id", noteID)
			return k, nil
		}
		s.keys[id] = k
		return bytes.Clone(k), nil
	})
	if err != nil {
		return nil, &common.CryptoError{Op: "derive key", NoteID: noteID, Err: err}
	}
	// v may be shared with other callers of the same flight
	return bytes.Clone(v.([]byte)), nil
}

func (s *Service) fetchKey(ctx context.Context, noteID uint64) ([]byte, error) {
	private, public, err := cryptox.NewTransportKeyPair()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(private)

	wrapped, err := s.oracle.EncryptedSymmetricKeyForNote(ctx, noteID, public)
	if err != nil {
		return nil, err
	}

	return cryptox.UnwrapKey(private, wrapped)
}

// Evict wipes and drops the cached key of (noteID, owner).
func (s *Service) Evict(noteID uint64, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := noteKey{id: noteID, owner: owner}
	if k, ok := s.keys[id]; ok {
		common.WipeByteArray(k)
		delete(s.keys, id)
	}
}

// Reset wipes every cached key and makes derivations still in flight
// uncacheable. Called when the session ends.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	for id, k := range s.keys {
		common.WipeByteArray(k)
		delete(s.keys, id)
	}
}
