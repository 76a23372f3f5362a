package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// Limits bounds what a single user may store.
type Limits struct {
	MaxNotesPerUser  int
	MaxNoteChars     int
	MaxSharesPerNote int
}

// NoteService enforces ownership, sharing and locking rules on notes and
// derives note keys for authorized callers. Every method takes the caller's
// identity as resolved from the access token.
type NoteService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	limits       Limits
	masterSecret []byte
	keyEpoch     uint64
	archiver     Archiver
	logger       logging.Logger
	now          func() time.Time
}

// NewNoteService builds a NoteService. archiver may be nil, in which case
// deleted notes are not archived.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, archiver Archiver, logger logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: m,
		limits: Limits{
			MaxNotesPerUser:  cfg.MaxNotesPerUser,
			MaxNoteChars:     cfg.MaxNoteChars,
			MaxSharesPerNote: cfg.MaxSharesPerNote,
		},
		masterSecret: []byte(cfg.MasterSecret),
		keyEpoch:     cfg.KeyEpoch,
		archiver:     archiver,
		logger:       logger.With("module", "notes"),
		now:          time.Now,
	}
}

func (s *NoteService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

func principalOf(identity *string) string {
	if identity == nil {
		return common.Everyone
	}
	return *identity
}

// effectiveRule returns the rule through which caller can access a note at
// now: the caller's own rule first, then the everyone rule. Nil means no
// access.
func (s *NoteService) effectiveRule(ctx context.Context, tx dbx.DBTX, noteID uint64, caller string, now time.Time) (*models.Rule, error) {
	rules := s.repomanager.Rules(tx)
	for _, principal := range []string{caller, common.Everyone} {
		r, err := rules.Find(ctx, noteID, principal)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if r.EffectiveAt(now) {
			return r, nil
		}
	}
	return nil, nil
}

// authorize checks read access. The owner always passes with a nil rule.
func (s *NoteService) authorize(ctx context.Context, tx dbx.DBTX, n *models.Note, caller string, now time.Time) (*models.Rule, error) {
	if n.Owner == caller {
		return nil, nil
	}
	r, err := s.effectiveRule(ctx, tx, n.ID, caller, now)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, common.ErrorUnauthorized
	}
	return r, nil
}

func (s *NoteService) appendHistory(ctx context.Context, tx dbx.DBTX, e models.HistoryEntry) error {
	if e.Labels == nil {
		e.Labels = []string{}
	}
	return s.repomanager.History(tx).Append(ctx, &e)
}

// Create allocates a new empty note owned by caller.
func (s *NoteService) Create(ctx context.Context, caller string) (uint64, error) {
	if caller == "" {
		return 0, common.ErrAnonymousNotAllowed
	}

	var id uint64
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		notes := s.repomanager.Notes(tx)

		owned, err := notes.CountOwned(ctx, caller)
		if err != nil {
			return err
		}
		if owned >= s.limits.MaxNotesPerUser {
			return common.ErrTooManyNotes
		}

		now := s.now()
		id, err = notes.Create(ctx, caller, now)
		if err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, models.HistoryEntry{NoteID: id, Action: models.ActionCreated, User: caller, CreatedAt: now})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug(ctx, "note created", "note_id", id)
	return id, nil
}

// Update replaces the metadata and ciphertext of a note.
func (s *NoteService) Update(ctx context.Context, caller string, id uint64, data, encryptedText string) error {
	if caller == "" {
		return common.ErrAnonymousNotAllowed
	}
	if utf8.RuneCountInString(encryptedText) > s.limits.MaxNoteChars {
		return common.ErrNoteTooLarge
	}

	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		notes := s.repomanager.Notes(tx)

		n, err := notes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if _, err := s.authorize(ctx, tx, n, caller, now); err != nil {
			return err
		}
		if n.Locked && n.Owner != caller {
			return common.ErrNoteLocked
		}

		if err := notes.Update(ctx, id, data, encryptedText, now); err != nil {
			return err
		}
		return s.appendHistory(ctx, tx, models.HistoryEntry{NoteID: id, Action: models.ActionUpdated, User: caller, CreatedAt: now})
	})
}

func (s *NoteService) view(ctx context.Context, db dbx.DBTX, n *models.Note) (*models.NoteView, error) {
	rules, err := s.repomanager.Rules(db).List(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.repomanager.History(db).List(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return &models.NoteView{Note: n, Rules: rules, History: history}, nil
}

// List returns every note caller can read: owned notes plus notes with an
// effective grant to caller or to everyone, once each, ordered by id.
func (s *NoteService) List(ctx context.Context, caller string) ([]*models.NoteView, error) {
	if caller == "" {
		return nil, common.ErrAnonymousNotAllowed
	}

	notes, err := s.repomanager.Notes(s.db).ListVisible(ctx, caller, s.now())
	if err != nil {
		return nil, err
	}

	views := make([]*models.NoteView, 0, len(notes))
	for _, n := range notes {
		v, err := s.view(ctx, s.db, n)
		if err != nil {
			return nil, fmt.Errorf("load note %d: %w", n.ID, err)
		}
		views = append(views, v)
	}
	return views, nil
}

// Get returns one note under the same authorization as List.
func (s *NoteService) Get(ctx context.Context, caller string, id uint64) (*models.NoteView, error) {
	if caller == "" {
		return nil, common.ErrAnonymousNotAllowed
	}

	n, err := s.repomanager.Notes(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, s.db, n, caller, s.now()); err != nil {
		return nil, err
	}
	return s.view(ctx, s.db, n)
}

// ownedForUpdate locks note id and checks that caller owns it.
func (s *NoteService) ownedForUpdate(ctx context.Context, tx dbx.DBTX, caller string, id uint64) (*models.Note, error) {
	if caller == "" {
		return nil, common.ErrAnonymousNotAllowed
	}
	n, err := s.repomanager.Notes(tx).GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Owner != caller {
		return nil, common.ErrNotOwner
	}
	return n, nil
}

// AddUser grants identity (everyone when nil) access to a note from when on
// (immediately when nil). The first grant locks the note.
func (s *NoteService) AddUser(ctx context.Context, caller string, id uint64, identity *string, when *time.Time) error {
	principal := principalOf(identity)
	if principal == "" || principal == caller {
		return common.ErrorInvalidInput
	}

	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.ownedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		rules := s.repomanager.Rules(tx)

		_, err = rules.Find(ctx, id, principal)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			count, err := rules.Count(ctx, id)
			if err != nil {
				return err
			}
			if count >= s.limits.MaxSharesPerNote {
				return common.ErrTooManyShares
			}
		case err != nil:
			return err
		}

		now := s.now()
		if !n.Locked {
			if err := s.repomanager.Notes(tx).SetLocked(ctx, id, true); err != nil {
				return err
			}
			if err := s.appendHistory(ctx, tx, models.HistoryEntry{NoteID: id, Action: models.ActionLocked, User: caller, CreatedAt: now}); err != nil {
				return err
			}
		}

		if err := rules.Upsert(ctx, &models.Rule{NoteID: id, Principal: principal, When: when}); err != nil {
			return err
		}

		var labels []string
		if principal == common.Everyone {
			labels = append(labels, models.LabelEveryone)
		}
		if when != nil && when.After(now) {
			labels = append(labels, models.LabelScheduled)
		}
		return s.appendHistory(ctx, tx, models.HistoryEntry{
			NoteID:       id,
			Action:       models.ActionShared,
			User:         caller,
			RuleIdentity: &principal,
			RuleWhen:     when,
			Labels:       labels,
			CreatedAt:    now,
		})
	})
}

// RemoveUser revokes the grant of identity (everyone when nil).
func (s *NoteService) RemoveUser(ctx context.Context, caller string, id uint64, identity *string) error {
	principal := principalOf(identity)

	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.ownedForUpdate(ctx, tx, caller, id); err != nil {
			return err
		}
		rules := s.repomanager.Rules(tx)

		rule, err := rules.Find(ctx, id, principal)
		if err != nil {
			return err
		}
		if _, err := rules.Delete(ctx, id, principal); err != nil {
			return err
		}

		return s.appendHistory(ctx, tx, models.HistoryEntry{
			NoteID:       id,
			Action:       models.ActionUnshared,
			User:         caller,
			RuleIdentity: &principal,
			RuleWhen:     rule.When,
			CreatedAt:    s.now(),
		})
	})
}

// Delete removes an unlocked note of caller. When an archiver is set, the
// note is archived first and a failed archive aborts the deletion.
func (s *NoteService) Delete(ctx context.Context, caller string, id uint64) error {
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.ownedForUpdate(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if n.Locked {
			return common.ErrNoteLocked
		}

		if s.archiver != nil {
			v, err := s.view(ctx, tx, n)
			if err != nil {
				return err
			}
			if err := s.archiver.Archive(ctx, v); err != nil {
				return err
			}
		}

		if err := s.repomanager.Notes(tx).Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Debug(ctx, "note deleted", "note_id", id, "archived", s.archiver != nil)
		return nil
	})
}

// KeyForNote derives the symmetric key of a note and wraps it for
// transportPublicKey. A non-owner's first key request marks the grant that
// admitted them as read and records a single read history entry.
func (s *NoteService) KeyForNote(ctx context.Context, caller string, id uint64, transportPublicKey []byte) ([]byte, error) {
	if caller == "" {
		return nil, common.ErrAnonymousNotAllowed
	}
	if len(transportPublicKey) != 32 {
		return nil, common.ErrorInvalidInput
	}

	var owner string
	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Notes(tx).GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		owner = n.Owner

		now := s.now()
		rule, err := s.authorize(ctx, tx, n, caller, now)
		if err != nil {
			return err
		}
		if rule == nil {
			return nil
		}

		if !rule.WasRead {
			if err := s.repomanager.Rules(tx).MarkRead(ctx, id, rule.Principal); err != nil {
				return err
			}
		}

		history := s.repomanager.History(tx)
		seen, err := history.Exists(ctx, id, models.ActionRead, caller)
		if err != nil || seen {
			return err
		}
		return s.appendHistory(ctx, tx, models.HistoryEntry{
			NoteID:       id,
			Action:       models.ActionRead,
			User:         caller,
			RuleIdentity: &rule.Principal,
			RuleWhen:     rule.When,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	key, err := cryptox.DeriveNoteKey(s.masterSecret, s.keyEpoch, id, owner)
	if err != nil {
		return nil, &common.CryptoError{Op: "derive", NoteID: id, Err: err}
	}
	defer common.WipeByteArray(key)

	wrapped, err := cryptox.WrapKey(transportPublicKey, key)
	if err != nil {
		return nil, &common.CryptoError{Op: "wrap", NoteID: id, Err: err}
	}
	return wrapped, nil
}
