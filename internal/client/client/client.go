package client

import (
	"context"

	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
)

// RemoteStore is the note operation set of the remote store. Optional values
// are passed as nil pointers so that "absent" is never confused with an empty
// identity or a zero timestamp.
type RemoteStore interface {
	CreateNote(ctx context.Context) (uint64, error)
	UpdateNote(ctx context.Context, id uint64, data string, encryptedText string) error
	ListNotes(ctx context.Context) ([]*pb.EncryptedNote, error)
	RefreshNote(ctx context.Context, id uint64) (*pb.EncryptedNote, error)
	GrantAccess(ctx context.Context, id uint64, identity *string, when *uint64) error
	RevokeAccess(ctx context.Context, id uint64, identity *string) error
	DeleteNote(ctx context.Context, id uint64) error
	EncryptedSymmetricKeyForNote(ctx context.Context, id uint64, transportPublicKey []byte) ([]byte, error)
	Whoami(ctx context.Context) (string, error)
}

type Client interface {
	RemoteStore
	Close() error
	Register(ctx context.Context, username string, salt []byte, key []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, key []byte) error
	Logout()
	Ping(ctx context.Context) error
}
