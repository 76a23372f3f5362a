package services

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/history"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/rules"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// newSQLMockDB returns a mock DB for dbx.WithTx. Tests declare each
// transaction with commitTx or rollbackTx.
func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func commitTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func rollbackTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

// memStore is an in-memory stand-in for the Postgres schema. Transactions
// are not modelled; rollback tests only check the returned error.
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	notes   map[uint64]*models.Note
	rules   map[uint64]map[string]models.Rule
	history map[uint64][]models.HistoryEntry
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken

	// fail makes the named operation return the error.
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		notes:   map[uint64]*models.Note{},
		rules:   map[uint64]map[string]models.Rule{},
		history: map[uint64][]models.HistoryEntry{},
		users:   map[string]*models.User{},
		tokens:  map[string]*models.RefreshToken{},
		fail:    map[string]error{},
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository                 { return memUsers{m} }
func (m *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m} }
func (m *memStore) Notes(dbx.DBTX) notes.Repository                 { return memNotes{m} }
func (m *memStore) Rules(dbx.DBTX) rules.Repository                 { return memRules{m} }
func (m *memStore) History(dbx.DBTX) history.Repository             { return memHistory{m} }

func (m *memStore) failed(op string) error {
	return m.fail[op]
}

func (m *memStore) actions(id uint64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, h := range m.history[id] {
		out = append(out, h.Action)
	}
	return out
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("users.create"); err != nil {
		return nil, err
	}
	if _, ok := r.m.users[u.UserName]; ok {
		return nil, users.ErrUserExists
	}
	cp := *u
	r.m.users[u.UserName] = &cp
	return u, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("users.get"); err != nil {
		return nil, err
	}
	u, ok := r.m.users[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type memTokens struct{ m *memStore }

func (r memTokens) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("tokens.create"); err != nil {
		return err
	}
	var name string
	for _, u := range r.m.users {
		if u.ID == userID {
			name = u.UserName
		}
	}
	r.m.tokens[token] = &models.RefreshToken{UserID: userID, UserName: name, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (r memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("tokens.find"); err != nil {
		return nil, err
	}
	t, ok := r.m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTokens) Delete(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("tokens.delete"); err != nil {
		return err
	}
	delete(r.m.tokens, token)
	return nil
}

func (r memTokens) DeleteExpired(_ context.Context, userID string, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for k, t := range r.m.tokens {
		if t.UserID == userID && t.ExpiresAt.Before(now) {
			delete(r.m.tokens, k)
			n++
		}
	}
	return n, nil
}

type memNotes struct{ m *memStore }

func (r memNotes) Create(_ context.Context, owner string, now time.Time) (uint64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("notes.create"); err != nil {
		return 0, err
	}
	r.m.nextID++
	id := r.m.nextID
	r.m.notes[id] = &models.Note{ID: id, Owner: owner, CreatedAt: now, UpdatedAt: now}
	return id, nil
}

func (r memNotes) CountOwned(_ context.Context, owner string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, note := range r.m.notes {
		if note.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (r memNotes) Get(_ context.Context, id uint64) (*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (r memNotes) GetForUpdate(ctx context.Context, id uint64) (*models.Note, error) {
	return r.Get(ctx, id)
}

func (r memNotes) Update(_ context.Context, id uint64, data, encryptedText string, now time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return common.ErrorNotFound
	}
	n.Data, n.EncryptedText, n.UpdatedAt = data, encryptedText, now
	return nil
}

func (r memNotes) SetLocked(_ context.Context, id uint64, locked bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return common.ErrorNotFound
	}
	n.Locked = locked
	return nil
}

func (r memNotes) Delete(_ context.Context, id uint64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.notes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.notes, id)
	delete(r.m.rules, id)
	delete(r.m.history, id)
	return nil
}

func (r memNotes) ListVisible(_ context.Context, identity string, now time.Time) ([]*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("notes.list"); err != nil {
		return nil, err
	}
	var out []*models.Note
	for id, n := range r.m.notes {
		visible := n.Owner == identity
		for _, p := range []string{identity, common.Everyone} {
			if rule, ok := r.m.rules[id][p]; ok && rule.EffectiveAt(now) {
				visible = true
			}
		}
		if visible {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memRules struct{ m *memStore }

func (r memRules) List(_ context.Context, noteID uint64) ([]models.Rule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Rule
	for _, rule := range r.m.rules[noteID] {
		out = append(out, rule)
	}
	slices.SortFunc(out, func(a, b models.Rule) int {
		switch {
		case a.Principal < b.Principal:
			return -1
		case a.Principal > b.Principal:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r memRules) Find(_ context.Context, noteID uint64, principal string) (*models.Rule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rule, ok := r.m.rules[noteID][principal]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rule, nil
}

func (r memRules) Upsert(_ context.Context, rule *models.Rule) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.rules[rule.NoteID] == nil {
		r.m.rules[rule.NoteID] = map[string]models.Rule{}
	}
	existing := r.m.rules[rule.NoteID][rule.Principal]
	r.m.rules[rule.NoteID][rule.Principal] = models.Rule{
		NoteID: rule.NoteID, Principal: rule.Principal, When: rule.When, WasRead: existing.WasRead,
	}
	return nil
}

func (r memRules) Delete(_ context.Context, noteID uint64, principal string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.rules[noteID][principal]
	delete(r.m.rules[noteID], principal)
	return ok, nil
}

func (r memRules) Count(_ context.Context, noteID uint64) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.rules[noteID]), nil
}

func (r memRules) MarkRead(_ context.Context, noteID uint64, principal string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if rule, ok := r.m.rules[noteID][principal]; ok {
		rule.WasRead = true
		r.m.rules[noteID][principal] = rule
	}
	return nil
}

type memHistory struct{ m *memStore }

func (r memHistory) Append(_ context.Context, e *models.HistoryEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failed("history.append"); err != nil {
		return err
	}
	r.m.history[e.NoteID] = append(r.m.history[e.NoteID], *e)
	return nil
}

func (r memHistory) List(_ context.Context, noteID uint64) ([]models.HistoryEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return slices.Clone(r.m.history[noteID]), nil
}

func (r memHistory) Exists(_ context.Context, noteID uint64, action, user string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, h := range r.m.history[noteID] {
		if h.Action == action && h.User == user {
			return true, nil
		}
	}
	return false, nil
}
