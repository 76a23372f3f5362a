package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/codec"
	"github.com/dmitrijs2005/gophnotes/internal/client/crypto"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// NoteService sends user edits to the remote store. It never changes the
// local note list: edits show up there after the next sync cycle.
type NoteService interface {
	// Add creates a note owned by owner and uploads its first revision.
	Add(ctx context.Context, owner string, content string, tags []string) (*models.Note, error)
	// Save uploads the current content and metadata of a persisted note.
	Save(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, id uint64) error
	// Grant gives identity access to the note from when on. A nil identity
	// means everyone, a nil when means right away.
	Grant(ctx context.Context, id uint64, identity *string, when *time.Time) error
	// Revoke removes the rule of identity, or the everyone rule if nil.
	Revoke(ctx context.Context, id uint64, identity *string) error
}

type noteService struct {
	remote client.RemoteStore
	codec  *codec.Codec
	now    func() time.Time
}

func NewNoteService(remote client.RemoteStore, cs crypto.CryptoService, logger logging.Logger) NoteService {
	return &noteService{remote: remote, codec: codec.New(cs, logger), now: time.Now}
}

func (s *noteService) Add(ctx context.Context, owner string, content string, tags []string) (*models.Note, error) {
	n := models.NewNote(content, tags, owner, s.now())

	id, err := s.remote.CreateNote(ctx)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	n.ID = id

	if err := s.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *noteService) Save(ctx context.Context, n *models.Note) error {
	if n.ID == 0 {
		return fmt.Errorf("save note: %w", common.ErrorInvalidInput)
	}

	wn, err := s.codec.ToWire(ctx, n)
	if err != nil {
		return fmt.Errorf("encode note %d: %w", n.ID, err)
	}

	if err := s.remote.UpdateNote(ctx, n.ID, wn.Data, wn.EncryptedText); err != nil {
		return fmt.Errorf("update note %d: %w", n.ID, err)
	}
	return nil
}

func (s *noteService) Delete(ctx context.Context, id uint64) error {
	if err := s.remote.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

func (s *noteService) Grant(ctx context.Context, id uint64, identity *string, when *time.Time) error {
	var ns *uint64
	if when != nil {
		v := models.MsToNs(when.UnixMilli())
		ns = &v
	}
	if err := s.remote.GrantAccess(ctx, id, identity, ns); err != nil {
		return fmt.Errorf("grant access to note %d: %w", id, err)
	}
	return nil
}

func (s *noteService) Revoke(ctx context.Context, id uint64, identity *string) error {
	if err := s.remote.RevokeAccess(ctx, id, identity); err != nil {
		return fmt.Errorf("revoke access to note %d: %w", id, err)
	}
	return nil
}
