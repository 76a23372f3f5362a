package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/stretchr/testify/require"
)

var noteNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeArchiver struct {
	got []*models.NoteView
	err error
}

func (a *fakeArchiver) Archive(_ context.Context, v *models.NoteView) error {
	if a.err != nil {
		return a.err
	}
	a.got = append(a.got, v)
	return nil
}

func newNoteService(t *testing.T, archiver Archiver) (*NoteService, *memStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	cfg := &config.Config{
		MasterSecret:     "master",
		KeyEpoch:         1,
		MaxNotesPerUser:  2,
		MaxNoteChars:     10,
		MaxSharesPerNote: 2,
	}
	s := NewNoteService(db, store, cfg, archiver, logging.NewNop())
	s.now = func() time.Time { return noteNow }
	return s, store, mock
}

func strPtr(s string) *string { return &s }

// seedNote creates a note owned by owner directly in the store.
func seedNote(store *memStore, owner string) uint64 {
	id, _ := memNotes{store}.Create(context.Background(), owner, noteNow)
	return id
}

func grant(store *memStore, id uint64, principal string, when *time.Time) {
	_ = memRules{store}.Upsert(context.Background(), &models.Rule{NoteID: id, Principal: principal, When: when})
	_ = memNotes{store}.SetLocked(context.Background(), id, true)
}

func TestNoteService_Create(t *testing.T) {
	s, store, mock := newNoteService(t, nil)
	ctx := context.Background()

	commitTx(mock)
	id, err := s.Create(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.Equal(t, []string{models.ActionCreated}, store.actions(id))

	commitTx(mock)
	_, err = s.Create(ctx, "alice")
	require.NoError(t, err)

	rollbackTx(mock)
	_, err = s.Create(ctx, "alice")
	require.ErrorIs(t, err, common.ErrTooManyNotes)

	_, err = s.Create(ctx, "")
	require.ErrorIs(t, err, common.ErrAnonymousNotAllowed)
}

func TestNoteService_Update(t *testing.T) {
	s, store, mock := newNoteService(t, nil)
	ctx := context.Background()
	id := seedNote(store, "alice")

	commitTx(mock)
	require.NoError(t, s.Update(ctx, "alice", id, `{"tags":["a"]}`, "ct"))
	require.Equal(t, "ct", store.notes[id].EncryptedText)
	require.Equal(t, []string{models.ActionUpdated}, store.actions(id))

	require.ErrorIs(t, s.Update(ctx, "alice", id, "", "01234567890"), common.ErrNoteTooLarge)

	rollbackTx(mock)
	require.ErrorIs(t, s.Update(ctx, "bob", id, "", "x"), common.ErrorUnauthorized)

	grant(store, id, "bob", nil)
	rollbackTx(mock)
	require.ErrorIs(t, s.Update(ctx, "bob", id, "", "x"), common.ErrNoteLocked)

	commitTx(mock)
	require.NoError(t, s.Update(ctx, "alice", id, "", "owner"), "owner still writes a locked note")

	rollbackTx(mock)
	require.ErrorIs(t, s.Update(ctx, "alice", 99, "", "x"), common.ErrorNotFound)
}

func TestNoteService_AddUser(t *testing.T) {
	s, store, mock := newNoteService(t, nil)
	ctx := context.Background()
	id := seedNote(store, "alice")
	later := noteNow.Add(time.Hour)

	rollbackTx(mock)
	require.ErrorIs(t, s.AddUser(ctx, "bob", id, strPtr("carol"), nil), common.ErrNotOwner)

	require.ErrorIs(t, s.AddUser(ctx, "alice", id, strPtr("alice"), nil), common.ErrorInvalidInput)

	commitTx(mock)
	require.NoError(t, s.AddUser(ctx, "alice", id, strPtr("bob"), nil))
	require.True(t, store.notes[id].Locked)
	require.Equal(t, []string{models.ActionLocked, models.ActionShared}, store.actions(id))

	commitTx(mock)
	require.NoError(t, s.AddUser(ctx, "alice", id, nil, &later))
	require.Equal(t, []string{models.ActionLocked, models.ActionShared, models.ActionShared}, store.actions(id))

	last := store.history[id][2]
	require.Equal(t, common.Everyone, *last.RuleIdentity)
	require.Equal(t, later, *last.RuleWhen)
	require.Equal(t, []string{models.LabelEveryone, models.LabelScheduled}, last.Labels)

	rollbackTx(mock)
	require.ErrorIs(t, s.AddUser(ctx, "alice", id, strPtr("carol"), nil), common.ErrTooManyShares)

	commitTx(mock)
	require.NoError(t, s.AddUser(ctx, "alice", id, strPtr("bob"), &later), "updating an existing grant is not limited")
	require.Equal(t, later, *store.rules[id]["bob"].When)
}

func TestNoteService_RemoveUser(t *testing.T) {
	s, store, mock := newNoteService(t, nil)
	ctx := context.Background()
	id := seedNote(store, "alice")
	grant(store, id, common.Everyone, nil)

	rollbackTx(mock)
	require.ErrorIs(t, s.RemoveUser(ctx, "alice", id, strPtr("bob")), common.ErrorNotFound)

	commitTx(mock)
	require.NoError(t, s.RemoveUser(ctx, "alice", id, nil))
	require.Empty(t, store.rules[id])

	h := store.history[id]
	require.Len(t, h, 1)
	require.Equal(t, models.ActionUnshared, h[0].Action)
	require.Equal(t, common.Everyone, *h[0].RuleIdentity)
	require.True(t, store.notes[id].Locked, "revoking does not unlock")
}

func TestNoteService_Delete(t *testing.T) {
	archiver := &fakeArchiver{}
	s, store, mock := newNoteService(t, archiver)
	ctx := context.Background()

	locked := seedNote(store, "alice")
	grant(store, locked, "bob", nil)
	rollbackTx(mock)
	require.ErrorIs(t, s.Delete(ctx, "alice", locked), common.ErrNoteLocked)

	id := seedNote(store, "alice")
	rollbackTx(mock)
	require.ErrorIs(t, s.Delete(ctx, "bob", id), common.ErrNotOwner)

	archiver.err = errBoom{}
	rollbackTx(mock)
	require.ErrorIs(t, s.Delete(ctx, "alice", id), errBoom{})
	require.Contains(t, store.notes, id, "failed archive keeps the note")

	archiver.err = nil
	commitTx(mock)
	require.NoError(t, s.Delete(ctx, "alice", id))
	require.NotContains(t, store.notes, id)
	require.Len(t, archiver.got, 1)
	require.Equal(t, id, archiver.got[0].Note.ID)
}

func TestNoteService_ListAndGet(t *testing.T) {
	s, store, _ := newNoteService(t, nil)
	ctx := context.Background()
	past := noteNow.Add(-time.Hour)
	future := noteNow.Add(time.Hour)

	own := seedNote(store, "bob")
	direct := seedNote(store, "alice")
	grant(store, direct, "bob", &past)
	public := seedNote(store, "carol")
	grant(store, public, common.Everyone, nil)
	both := seedNote(store, "carol")
	grant(store, both, "bob", nil)
	grant(store, both, common.Everyone, nil)
	scheduled := seedNote(store, "alice")
	grant(store, scheduled, "bob", &future)
	seedNote(store, "alice")

	views, err := s.List(ctx, "bob")
	require.NoError(t, err)

	var ids []uint64
	for _, v := range views {
		ids = append(ids, v.Note.ID)
	}
	require.Equal(t, []uint64{own, direct, public, both}, ids)
	require.Len(t, views[3].Rules, 2)

	_, err = s.Get(ctx, "bob", scheduled)
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	v, err := s.Get(ctx, "dave", public)
	require.NoError(t, err)
	require.Equal(t, "carol", v.Note.Owner)

	_, err = s.Get(ctx, "bob", 404)
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.List(ctx, "")
	require.ErrorIs(t, err, common.ErrAnonymousNotAllowed)
}

func TestNoteService_KeyForNote(t *testing.T) {
	s, store, mock := newNoteService(t, nil)
	ctx := context.Background()
	id := seedNote(store, "alice")
	grant(store, id, common.Everyone, nil)

	priv, pub, err := cryptox.NewTransportKeyPair()
	require.NoError(t, err)
	want, err := cryptox.DeriveNoteKey([]byte("master"), 1, id, "alice")
	require.NoError(t, err)

	commitTx(mock)
	wrapped, err := s.KeyForNote(ctx, "alice", id, pub)
	require.NoError(t, err)
	got, err := cryptox.UnwrapKey(priv, wrapped)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Empty(t, store.actions(id), "owner reads are not recorded")

	for range 2 {
		commitTx(mock)
		wrapped, err = s.KeyForNote(ctx, "bob", id, pub)
		require.NoError(t, err)
		got, err = cryptox.UnwrapKey(priv, wrapped)
		require.NoError(t, err)
		require.Equal(t, want, got, "grantees get the owner's key")
	}
	require.Equal(t, []string{models.ActionRead}, store.actions(id))
	require.True(t, store.rules[id][common.Everyone].WasRead)

	v, err := s.Get(ctx, "alice", id)
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, v.ReadBy())

	_, err = s.KeyForNote(ctx, "bob", id, pub[:5])
	require.ErrorIs(t, err, common.ErrorInvalidInput)

	other := seedNote(store, "alice")
	rollbackTx(mock)
	_, err = s.KeyForNote(ctx, "bob", other, pub)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
