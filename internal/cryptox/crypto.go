// Package cryptox holds the cryptographic primitives shared by client and
// server: AES-256-GCM sealing, Argon2id master keys, HKDF note-key derivation
// and X25519 wrapping of derived keys for transport.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of every symmetric key produced here (AES-256).
const KeySize = 32

const nonceSize = 12

var (
	// ErrMalformedCiphertext means the input cannot be a sealed message at all.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	// ErrAuthentication means the GCM tag did not verify: wrong key or tampered data.
	ErrAuthentication = errors.New("message authentication failed")
)

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with AES-GCM under key. A fresh random 12-byte nonce
// is generated for each call and prepended to the ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. It returns ErrMalformedCiphertext when sealed is too
// short to contain a nonce and a tag, and ErrAuthentication when the tag does
// not verify under key.
func Open(key, sealed []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < nonceSize+aesgcm.Overhead() {
		return nil, ErrMalformedCiphertext
	}

	plaintext, err := aesgcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DerivationID is the prefix-free derivation input for a note key: the note id
// as a fixed-size 16-byte big-endian integer followed by the owner identity.
func DerivationID(noteID uint64, owner string) []byte {
	buf := make([]byte, 16, 16+len(owner))
	binary.BigEndian.PutUint64(buf[8:], noteID)
	return append(buf, owner...)
}

// DeriveNoteKey derives the symmetric key of (noteID, owner) from the server
// master secret. Changing epoch changes every derived key.
func DeriveNoteKey(masterSecret []byte, epoch uint64, noteID uint64, owner string) ([]byte, error) {
	salt := []byte(fmt.Sprintf("epoch:%d", epoch))
	r := hkdf.New(sha256.New, masterSecret, salt, DerivationID(noteID, owner))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// NewTransportKeyPair generates an X25519 key pair used once to receive a
// derived note key from the server.
func NewTransportKeyPair() (private, public []byte, err error) {
	private = make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(private); err != nil {
		return nil, nil, err
	}
	public, err = curve25519.X25519(private, curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}
	return private, public, nil
}

// WrapKey encrypts key for the holder of recipientPublic. The result is the
// ephemeral public key followed by the sealed key.
func WrapKey(recipientPublic, key []byte) ([]byte, error) {
	ephPrivate, ephPublic, err := NewTransportKeyPair()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(ephPrivate)

	kek, err := transportKEK(ephPrivate, recipientPublic, recipientPublic, ephPublic)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(kek)

	sealed, err := Seal(kek, key)
	if err != nil {
		return nil, err
	}
	return append(ephPublic, sealed...), nil
}

// UnwrapKey reverses WrapKey with the recipient's private key.
func UnwrapKey(recipientPrivate, wrapped []byte) ([]byte, error) {
	if len(wrapped) < curve25519.PointSize {
		return nil, ErrMalformedCiphertext
	}
	ephPublic := wrapped[:curve25519.PointSize]

	recipientPublic, err := curve25519.X25519(recipientPrivate, curve25519.Basepoint)
	if err != nil {
		return nil, err
	}

	kek, err := transportKEK(recipientPrivate, ephPublic, recipientPublic, ephPublic)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(kek)

	return Open(kek, wrapped[curve25519.PointSize:])
}

// transportKEK computes the shared secret of (private, peer) and expands it
// with both public keys bound into the salt.
func transportKEK(private, peer, recipientPublic, ephPublic []byte) ([]byte, error) {
	shared, err := curve25519.X25519(private, peer)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(shared)

	salt := append(append([]byte{}, ephPublic...), recipientPublic...)
	r := hkdf.New(sha256.New, shared, salt, []byte("gophnotes transport key"))

	kek := make([]byte, KeySize)
	if _, err := io.ReadFull(r, kek); err != nil {
		return nil, err
	}
	return kek, nil
}
