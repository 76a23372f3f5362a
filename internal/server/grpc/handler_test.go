package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeUser struct {
	refreshResp *services.TokenPair
	refreshErr  error

	regResp *models.User
	regErr  error

	saltResp []byte
	saltErr  error

	loginResp *services.TokenPair
	loginErr  error
}

func (f *fakeUser) RefreshToken(ctx context.Context, refresh string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeUser) Register(ctx context.Context, username string, salt []byte, verifier []byte) (*models.User, error) {
	return f.regResp, f.regErr
}
func (f *fakeUser) GetSalt(ctx context.Context, username string) ([]byte, error) {
	return f.saltResp, f.saltErr
}
func (f *fakeUser) Login(ctx context.Context, username string, verifierCandidate []byte) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

// fakeNotes records the caller and arguments of the last call.
type fakeNotes struct {
	caller   string
	id       uint64
	identity *string
	when     *time.Time
	data     string
	text     string
	pub      []byte

	createID uint64
	views    []*models.NoteView
	key      []byte
	err      error
}

func (f *fakeNotes) Create(ctx context.Context, caller string) (uint64, error) {
	f.caller = caller
	return f.createID, f.err
}
func (f *fakeNotes) Update(ctx context.Context, caller string, id uint64, data, encryptedText string) error {
	f.caller, f.id, f.data, f.text = caller, id, data, encryptedText
	return f.err
}
func (f *fakeNotes) List(ctx context.Context, caller string) ([]*models.NoteView, error) {
	f.caller = caller
	return f.views, f.err
}
func (f *fakeNotes) Get(ctx context.Context, caller string, id uint64) (*models.NoteView, error) {
	f.caller, f.id = caller, id
	if f.err != nil {
		return nil, f.err
	}
	return f.views[0], nil
}
func (f *fakeNotes) AddUser(ctx context.Context, caller string, id uint64, identity *string, when *time.Time) error {
	f.caller, f.id, f.identity, f.when = caller, id, identity, when
	return f.err
}
func (f *fakeNotes) RemoveUser(ctx context.Context, caller string, id uint64, identity *string) error {
	f.caller, f.id, f.identity = caller, id, identity
	return f.err
}
func (f *fakeNotes) Delete(ctx context.Context, caller string, id uint64) error {
	f.caller, f.id = caller, id
	return f.err
}
func (f *fakeNotes) KeyForNote(ctx context.Context, caller string, id uint64, pub []byte) ([]byte, error) {
	f.caller, f.id, f.pub = caller, id, pub
	return f.key, f.err
}

// ---- helpers ----

func newServer(u userSvc, n noteSvc) *GRPCServer {
	return &GRPCServer{
		address:   "127.0.0.1:0",
		users:     u,
		notes:     n,
		logger:    nopLogger{},
		jwtSecret: []byte("k"),
	}
}

func asAlice() context.Context {
	return context.WithValue(context.Background(), identityKey, "alice")
}

func sampleView() *models.NoteView {
	ts := time.Unix(100, 0).UTC()
	return &models.NoteView{
		Note: &models.Note{ID: 7, Owner: "alice", Data: `{"tags":[]}`, EncryptedText: "c2VhbGVk", CreatedAt: ts, UpdatedAt: ts},
		Rules: []models.Rule{
			{NoteID: 7, Principal: "bob", WasRead: true},
		},
		History: []models.HistoryEntry{
			{NoteID: 7, Action: models.ActionCreated, User: "alice", CreatedAt: ts},
			{NoteID: 7, Action: models.ActionRead, User: "bob", CreatedAt: ts},
		},
	}
}

// ---- account ----

func TestPing_OK(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeNotes{})
	resp, err := s.Ping(context.Background(), &pb.PingRequest{})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)
}

func TestRefreshToken_OK(t *testing.T) {
	u := &fakeUser{refreshResp: &services.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	s := newServer(u, &fakeNotes{})
	resp, err := s.RefreshToken(context.Background(), &pb.RefreshTokenRequest{RefreshToken: "r0"})
	require.NoError(t, err)
	require.Equal(t, "a", resp.AccessToken)
	require.Equal(t, "r", resp.RefreshToken)
}

func TestRefreshToken_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.ErrorUnauthorized, codes.Unauthenticated},
		{common.ErrRefreshTokenExpired, codes.Unauthenticated},
		{errors.New("oops"), codes.Internal},
	}
	for _, tt := range tests {
		s := newServer(&fakeUser{refreshErr: tt.err}, &fakeNotes{})
		_, err := s.RefreshToken(context.Background(), &pb.RefreshTokenRequest{RefreshToken: "r0"})
		require.Equal(t, tt.want, status.Code(err), tt.err.Error())
	}
}

func TestRegisterUser_OK(t *testing.T) {
	u := &fakeUser{regResp: &models.User{ID: "42", UserName: "u"}}
	s := newServer(u, &fakeNotes{})
	resp, err := s.RegisterUser(context.Background(), &pb.RegisterUserRequest{
		Username: "u", Salt: []byte("s"), Verifier: []byte("v"),
	})
	require.NoError(t, err)
	require.Equal(t, "u", resp.Username)
}

func TestRegisterUser_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("error creating user: %w", users.ErrUserExists), codes.AlreadyExists},
		{common.ErrorInvalidInput, codes.InvalidArgument},
		{errors.New("db down"), codes.Internal},
	}
	for _, tt := range tests {
		s := newServer(&fakeUser{regErr: tt.err}, &fakeNotes{})
		_, err := s.RegisterUser(context.Background(), &pb.RegisterUserRequest{Username: "u"})
		require.Equal(t, tt.want, status.Code(err), tt.err.Error())
	}
}

func TestGetSalt_OK(t *testing.T) {
	u := &fakeUser{saltResp: []byte("SALT123")}
	s := newServer(u, &fakeNotes{})
	resp, err := s.GetSalt(context.Background(), &pb.GetSaltRequest{Username: "u"})
	require.NoError(t, err)
	require.Equal(t, []byte("SALT123"), resp.Salt)
}

func TestGetSalt_InternalOnError(t *testing.T) {
	s := newServer(&fakeUser{saltErr: errors.New("db")}, &fakeNotes{})
	_, err := s.GetSalt(context.Background(), &pb.GetSaltRequest{Username: "u"})
	require.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, "internal error", status.Convert(err).Message())
}

func TestLogin_OK(t *testing.T) {
	u := &fakeUser{loginResp: &services.TokenPair{AccessToken: "A", RefreshToken: "R"}}
	s := newServer(u, &fakeNotes{})
	resp, err := s.Login(context.Background(), &pb.LoginRequest{Username: "u", VerifierCandidate: []byte("vv")})
	require.NoError(t, err)
	require.Equal(t, "A", resp.AccessToken)
	require.Equal(t, "R", resp.RefreshToken)
}

func TestLogin_UnauthorizedAndInternal(t *testing.T) {
	s := newServer(&fakeUser{loginErr: common.ErrorUnauthorized}, &fakeNotes{})
	_, err := s.Login(context.Background(), &pb.LoginRequest{Username: "u", VerifierCandidate: []byte("x")})
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	s2 := newServer(&fakeUser{loginErr: errors.New("boom")}, &fakeNotes{})
	_, err = s2.Login(context.Background(), &pb.LoginRequest{Username: "u", VerifierCandidate: []byte("x")})
	require.Equal(t, codes.Internal, status.Code(err))
}

// ---- notes ----

func TestWhoami_ReturnsCaller(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeNotes{})
	resp, err := s.Whoami(asAlice(), &pb.WhoamiRequest{})
	require.NoError(t, err)
	require.Equal(t, "alice", resp.Identity)
}

func TestCreateNote_PassesCaller(t *testing.T) {
	n := &fakeNotes{createID: 3}
	s := newServer(&fakeUser{}, n)

	resp, err := s.CreateNote(asAlice(), &pb.CreateNoteRequest{})
	require.NoError(t, err)
	require.Equal(t, uint64(3), resp.ID)
	require.Equal(t, "alice", n.caller)
}

func TestUpdateNote_PassesArguments(t *testing.T) {
	n := &fakeNotes{}
	s := newServer(&fakeUser{}, n)

	_, err := s.UpdateNote(asAlice(), &pb.UpdateNoteRequest{ID: 5, Data: "{}", EncryptedText: "xyz"})
	require.NoError(t, err)
	require.Equal(t, uint64(5), n.id)
	require.Equal(t, "{}", n.data)
	require.Equal(t, "xyz", n.text)
}

func TestGetNotes_RendersWireForm(t *testing.T) {
	n := &fakeNotes{views: []*models.NoteView{sampleView()}}
	s := newServer(&fakeUser{}, n)

	resp, err := s.GetNotes(asAlice(), &pb.GetNotesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)

	got := resp.Notes[0]
	require.Equal(t, uint64(7), got.ID)
	require.Equal(t, "c2VhbGVk", got.EncryptedText)
	require.Equal(t, []string{"bob"}, got.ReadBy)
	require.True(t, got.Users["bob"].WasRead)
	require.Len(t, got.History, 2)
}

func TestGetNotes_EmptyIsNotNil(t *testing.T) {
	s := newServer(&fakeUser{}, &fakeNotes{})

	resp, err := s.GetNotes(asAlice(), &pb.GetNotesRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp.Notes)
	require.Empty(t, resp.Notes)
}

func TestRefreshNote_OK(t *testing.T) {
	n := &fakeNotes{views: []*models.NoteView{sampleView()}}
	s := newServer(&fakeUser{}, n)

	resp, err := s.RefreshNote(asAlice(), &pb.RefreshNoteRequest{ID: 7})
	require.NoError(t, err)
	require.Equal(t, uint64(7), resp.Note.ID)
	require.Equal(t, uint64(7), n.id)
}

func TestAddUser_ConvertsWhen(t *testing.T) {
	n := &fakeNotes{}
	s := newServer(&fakeUser{}, n)

	bob := "bob"
	when := uint64(time.Unix(200, 0).UnixNano())
	_, err := s.AddUser(asAlice(), &pb.AddUserRequest{ID: 7, User: &bob, When: &when})
	require.NoError(t, err)
	require.Equal(t, "bob", *n.identity)
	require.NotNil(t, n.when)
	require.True(t, n.when.Equal(time.Unix(200, 0)))

	_, err = s.AddUser(asAlice(), &pb.AddUserRequest{ID: 7})
	require.NoError(t, err)
	require.Nil(t, n.identity)
	require.Nil(t, n.when)
}

func TestRemoveUser_PassesIdentity(t *testing.T) {
	n := &fakeNotes{}
	s := newServer(&fakeUser{}, n)

	bob := "bob"
	_, err := s.RemoveUser(asAlice(), &pb.RemoveUserRequest{ID: 7, User: &bob})
	require.NoError(t, err)
	require.Equal(t, "bob", *n.identity)
}

func TestDeleteNote_OK(t *testing.T) {
	n := &fakeNotes{}
	s := newServer(&fakeUser{}, n)

	_, err := s.DeleteNote(asAlice(), &pb.DeleteNoteRequest{ID: 9})
	require.NoError(t, err)
	require.Equal(t, uint64(9), n.id)
}

func TestEncryptedSymmetricKeyForNote_OK(t *testing.T) {
	n := &fakeNotes{key: []byte("wrapped")}
	s := newServer(&fakeUser{}, n)

	resp, err := s.EncryptedSymmetricKeyForNote(asAlice(), &pb.EncryptedSymmetricKeyForNoteRequest{ID: 7, TransportPublicKey: []byte("pub")})
	require.NoError(t, err)
	require.Equal(t, []byte("wrapped"), resp.EncryptedKey)
	require.Equal(t, []byte("pub"), n.pub)
}

func TestNoteHandlers_MapErrors(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{common.ErrorNotFound, codes.NotFound},
		{common.ErrorUnauthorized, codes.PermissionDenied},
		{common.ErrNoteLocked, codes.PermissionDenied},
		{common.ErrNotOwner, codes.PermissionDenied},
		{common.ErrTooManyNotes, codes.ResourceExhausted},
		{common.ErrTooManyShares, codes.ResourceExhausted},
		{common.ErrNoteTooLarge, codes.ResourceExhausted},
		{common.ErrorInvalidInput, codes.InvalidArgument},
		{common.ErrAnonymousNotAllowed, codes.Unauthenticated},
		{&common.CryptoError{Op: "derive", NoteID: 1, Err: errors.New("x")}, codes.Internal},
		{fmt.Errorf("db error: %w", errors.New("conn reset")), codes.Internal},
	}

	for _, tt := range tests {
		s := newServer(&fakeUser{}, &fakeNotes{err: tt.err})
		ctx := asAlice()

		calls := map[string]error{}
		_, calls["create"] = s.CreateNote(ctx, &pb.CreateNoteRequest{})
		_, calls["update"] = s.UpdateNote(ctx, &pb.UpdateNoteRequest{ID: 1})
		_, calls["list"] = s.GetNotes(ctx, &pb.GetNotesRequest{})
		_, calls["refresh"] = s.RefreshNote(ctx, &pb.RefreshNoteRequest{ID: 1})
		_, calls["add"] = s.AddUser(ctx, &pb.AddUserRequest{ID: 1})
		_, calls["remove"] = s.RemoveUser(ctx, &pb.RemoveUserRequest{ID: 1})
		_, calls["delete"] = s.DeleteNote(ctx, &pb.DeleteNoteRequest{ID: 1})
		_, calls["key"] = s.EncryptedSymmetricKeyForNote(ctx, &pb.EncryptedSymmetricKeyForNoteRequest{ID: 1})

		for name, err := range calls {
			require.Equal(t, tt.want, status.Code(err), "%s: %v", name, tt.err)
		}
	}
}
