package proto

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeServer struct {
	UnimplementedNotesServiceServer
	lastAddUser *AddUserRequest
}

func (f *fakeServer) AddUser(_ context.Context, in *AddUserRequest) (*AddUserResponse, error) {
	f.lastAddUser = in
	return &AddUserResponse{}, nil
}

func (f *fakeServer) RefreshNote(_ context.Context, in *RefreshNoteRequest) (*RefreshNoteResponse, error) {
	when := uint64(42)
	return &RefreshNoteResponse{Note: &EncryptedNote{
		ID:        in.ID,
		Owner:     "abc",
		Users:     map[string]PrincipalRule{"bob": {When: &when}, "carol": {}},
		CreatedAt: 1_000_000,
		UpdatedAt: 2_000_000,
	}}, nil
}

func startServer(t *testing.T, srv NotesServiceServer, opts ...grpc.ServerOption) NotesServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterNotesServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewNotesServiceClient(conn)
}

func TestNotesService_OptionalValuesSurviveTheWire(t *testing.T) {
	f := &fakeServer{}
	c := startServer(t, f)
	ctx := context.Background()

	_, err := c.AddUser(ctx, &AddUserRequest{ID: 7})
	require.NoError(t, err)
	require.NotNil(t, f.lastAddUser)
	require.Nil(t, f.lastAddUser.User)
	require.Nil(t, f.lastAddUser.When)

	empty := ""
	when := uint64(5)
	_, err = c.AddUser(ctx, &AddUserRequest{ID: 7, User: &empty, When: &when})
	require.NoError(t, err)
	require.NotNil(t, f.lastAddUser.User, "empty identity must not collapse into absent")
	require.Equal(t, "", *f.lastAddUser.User)
	require.Equal(t, uint64(5), *f.lastAddUser.When)

	resp, err := c.RefreshNote(ctx, &RefreshNoteRequest{ID: 9})
	require.NoError(t, err)
	require.Equal(t, uint64(9), resp.Note.ID)
	require.Equal(t, uint64(42), *resp.Note.Users["bob"].When)
	require.Nil(t, resp.Note.Users["carol"].When)
}

func TestNotesService_UnimplementedAndInterceptor(t *testing.T) {
	var seen string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return handler(ctx, req)
	}
	c := startServer(t, &fakeServer{}, grpc.UnaryInterceptor(interceptor))

	_, err := c.Ping(context.Background(), &PingRequest{})
	require.Equal(t, codes.Unimplemented, status.Code(err))
	require.Equal(t, NotesService_Ping_FullMethodName, seen)
}

func TestCodec_AbsentIsNotNull(t *testing.T) {
	b, err := Codec{}.Marshal(&PrincipalRule{})
	require.NoError(t, err)
	require.JSONEq(t, `{"was_read":false}`, string(b))

	when := uint64(0)
	b, err = Codec{}.Marshal(&PrincipalRule{When: &when, WasRead: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"when":0,"was_read":true}`, string(b))

	var in PrincipalRule
	require.Error(t, Codec{}.Unmarshal([]byte("{"), &in))
	require.Equal(t, CodecName, Codec{}.Name())
}
