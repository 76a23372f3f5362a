package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status error.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrNoteLocked),
		errors.Is(err, common.ErrNotOwner):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrTooManyNotes),
		errors.Is(err, common.ErrTooManyShares),
		errors.Is(err, common.ErrNoteTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, common.ErrorInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAnonymousNotAllowed):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, users.ErrUserExists):
		return status.Error(codes.AlreadyExists, err.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *pb.RegisterUserRequest) (*pb.RegisterUserResponse, error) {

	s.logger.Info(ctx, "Registration request")

	result, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "username", result.UserName)
	return &pb.RegisterUserResponse{Username: result.UserName}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *pb.GetSaltRequest) (*pb.GetSaltResponse, error) {

	result, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.GetSaltResponse{Salt: result}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {

	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		return nil, s.toStatus(ctx, err)
	}

	return &pb.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return nil, s.toStatus(ctx, err)
	}

	return &pb.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Whoami(ctx context.Context, req *pb.WhoamiRequest) (*pb.WhoamiResponse, error) {
	return &pb.WhoamiResponse{Identity: callerIdentity(ctx)}, nil
}

func (s *GRPCServer) CreateNote(ctx context.Context, req *pb.CreateNoteRequest) (*pb.CreateNoteResponse, error) {

	id, err := s.notes.Create(ctx, callerIdentity(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Debug(ctx, "Note created", "id", id)
	return &pb.CreateNoteResponse{ID: id}, nil
}

func (s *GRPCServer) UpdateNote(ctx context.Context, req *pb.UpdateNoteRequest) (*pb.UpdateNoteResponse, error) {

	err := s.notes.Update(ctx, callerIdentity(ctx), req.ID, req.Data, req.EncryptedText)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.UpdateNoteResponse{}, nil
}

func (s *GRPCServer) GetNotes(ctx context.Context, req *pb.GetNotesRequest) (*pb.GetNotesResponse, error) {

	views, err := s.notes.List(ctx, callerIdentity(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	notes := make([]*pb.EncryptedNote, 0, len(views))
	for _, v := range views {
		notes = append(notes, services.NoteToWire(v))
	}

	return &pb.GetNotesResponse{Notes: notes}, nil
}

func (s *GRPCServer) RefreshNote(ctx context.Context, req *pb.RefreshNoteRequest) (*pb.RefreshNoteResponse, error) {

	v, err := s.notes.Get(ctx, callerIdentity(ctx), req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.RefreshNoteResponse{Note: services.NoteToWire(v)}, nil
}

func (s *GRPCServer) AddUser(ctx context.Context, req *pb.AddUserRequest) (*pb.AddUserResponse, error) {

	err := s.notes.AddUser(ctx, callerIdentity(ctx), req.ID, req.User, services.FromNs(req.When))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AddUserResponse{}, nil
}

func (s *GRPCServer) RemoveUser(ctx context.Context, req *pb.RemoveUserRequest) (*pb.RemoveUserResponse, error) {

	err := s.notes.RemoveUser(ctx, callerIdentity(ctx), req.ID, req.User)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.RemoveUserResponse{}, nil
}

func (s *GRPCServer) DeleteNote(ctx context.Context, req *pb.DeleteNoteRequest) (*pb.DeleteNoteResponse, error) {

	err := s.notes.Delete(ctx, callerIdentity(ctx), req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Note deleted", "id", req.ID)
	return &pb.DeleteNoteResponse{}, nil
}

func (s *GRPCServer) EncryptedSymmetricKeyForNote(ctx context.Context, req *pb.EncryptedSymmetricKeyForNoteRequest) (*pb.EncryptedSymmetricKeyForNoteResponse, error) {

	key, err := s.notes.KeyForNote(ctx, callerIdentity(ctx), req.ID, req.TransportPublicKey)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.EncryptedSymmetricKeyForNoteResponse{EncryptedKey: key}, nil
}
