package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.NotesServiceClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string

	// serializes token refreshes so a rotated refresh token is used once
	refreshMu sync.Mutex
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	used, _ := s.tokens()
	err := invoker(withAccessToken(ctx, used), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	fresh, rerr := s.refreshTokens(ctx, used)
	if rerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

// refreshTokens exchanges the refresh token for a new pair unless another
// call already did so after used was read.
func (s *GRPCClient) refreshTokens(ctx context.Context, used string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != used {
		return access, nil
	}
	if refresh == "" {
		return "", ErrUnauthorized
	}

	resp, err := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return "", err
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.AccessToken, nil
}

func NewNotesClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewNotesServiceClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, key []byte) error {

	req := &pb.RegisterUserRequest{Username: userName, Salt: salt, Verifier: key}

	_, err := s.client.RegisterUser(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {

	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &pb.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, key []byte) error {

	req := &pb.LoginRequest{Username: userName, VerifierCandidate: key}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return nil
}

// Logout forgets the session tokens.
func (s *GRPCClient) Logout() {
	s.setTokens("", "")
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) CreateNote(ctx context.Context) (uint64, error) {
	resp, err := s.client.CreateNote(ctx, &pb.CreateNoteRequest{})
	if err != nil {
		return 0, s.transportError("create note", err)
	}
	return resp.ID, nil
}

func (s *GRPCClient) UpdateNote(ctx context.Context, id uint64, data string, encryptedText string) error {
	_, err := s.client.UpdateNote(ctx, &pb.UpdateNoteRequest{ID: id, Data: data, EncryptedText: encryptedText})
	if err != nil {
		return s.transportError("update note", err)
	}
	return nil
}

func (s *GRPCClient) ListNotes(ctx context.Context) ([]*pb.EncryptedNote, error) {
	resp, err := s.client.GetNotes(ctx, &pb.GetNotesRequest{})
	if err != nil {
		return nil, s.transportError("list notes", err)
	}
	return resp.Notes, nil
}

func (s *GRPCClient) RefreshNote(ctx context.Context, id uint64) (*pb.EncryptedNote, error) {
	resp, err := s.client.RefreshNote(ctx, &pb.RefreshNoteRequest{ID: id})
	if err != nil {
		return nil, s.transportError("refresh note", err)
	}
	if resp.Note == nil {
		return nil, &common.TransportError{Op: "refresh note", Err: common.ErrorNotFound}
	}
	return resp.Note, nil
}

func (s *GRPCClient) GrantAccess(ctx context.Context, id uint64, identity *string, when *uint64) error {
	_, err := s.client.AddUser(ctx, &pb.AddUserRequest{ID: id, User: identity, When: when})
	if err != nil {
		return s.transportError("grant access", err)
	}
	return nil
}

func (s *GRPCClient) RevokeAccess(ctx context.Context, id uint64, identity *string) error {
	_, err := s.client.RemoveUser(ctx, &pb.RemoveUserRequest{ID: id, User: identity})
	if err != nil {
		return s.transportError("revoke access", err)
	}
	return nil
}

func (s *GRPCClient) DeleteNote(ctx context.Context, id uint64) error {
	_, err := s.client.DeleteNote(ctx, &pb.DeleteNoteRequest{ID: id})
	if err != nil {
		return s.transportError("delete note", err)
	}
	return nil
}

func (s *GRPCClient) EncryptedSymmetricKeyForNote(ctx context.Context, id uint64, transportPublicKey []byte) ([]byte, error) {
	resp, err := s.client.EncryptedSymmetricKeyForNote(ctx, &pb.EncryptedSymmetricKeyForNoteRequest{ID: id, TransportPublicKey: transportPublicKey})
	if err != nil {
		return nil, s.transportError("derive key", err)
	}
	return resp.EncryptedKey, nil
}

func (s *GRPCClient) Whoami(ctx context.Context) (string, error) {
	resp, err := s.client.Whoami(ctx, &pb.WhoamiRequest{})
	if err != nil {
		return "", s.transportError("whoami", err)
	}
	return resp.Identity, nil
}

func (s *GRPCClient) transportError(op string, err error) error {
	return &common.TransportError{Op: op, Err: s.mapError(err)}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrLimitReached, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorInvalidInput, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
