package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type noteSvc interface {
	Create(ctx context.Context, caller string) (uint64, error)
	Update(ctx context.Context, caller string, id uint64, data, encryptedText string) error
	List(ctx context.Context, caller string) ([]*models.NoteView, error)
	Get(ctx context.Context, caller string, id uint64) (*models.NoteView, error)
	AddUser(ctx context.Context, caller string, id uint64, identity *string, when *time.Time) error
	RemoveUser(ctx context.Context, caller string, id uint64, identity *string) error
	Delete(ctx context.Context, caller string, id uint64) error
	KeyForNote(ctx context.Context, caller string, id uint64, transportPublicKey []byte) ([]byte, error)
}

type GRPCServer struct {
	pb.UnimplementedNotesServiceServer
	address   string
	users     userSvc
	notes     noteSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, ns noteSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		notes:     ns,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	pb.RegisterNotesServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
