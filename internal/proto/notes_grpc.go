package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "gophnotes.NotesService"

const (
	NotesService_CreateNote_FullMethodName                   = "/" + ServiceName + "/CreateNote"
	NotesService_UpdateNote_FullMethodName                   = "/" + ServiceName + "/UpdateNote"
	NotesService_GetNotes_FullMethodName                     = "/" + ServiceName + "/GetNotes"
	NotesService_RefreshNote_FullMethodName                  = "/" + ServiceName + "/RefreshNote"
	NotesService_AddUser_FullMethodName                      = "/" + ServiceName + "/AddUser"
	NotesService_RemoveUser_FullMethodName                   = "/" + ServiceName + "/RemoveUser"
	NotesService_DeleteNote_FullMethodName                   = "/" + ServiceName + "/DeleteNote"
	NotesService_EncryptedSymmetricKeyForNote_FullMethodName = "/" + ServiceName + "/EncryptedSymmetricKeyForNote"
	NotesService_Whoami_FullMethodName                       = "/" + ServiceName + "/Whoami"
	NotesService_RegisterUser_FullMethodName                 = "/" + ServiceName + "/RegisterUser"
	NotesService_GetSalt_FullMethodName                      = "/" + ServiceName + "/GetSalt"
	NotesService_Login_FullMethodName                        = "/" + ServiceName + "/Login"
	NotesService_RefreshToken_FullMethodName                 = "/" + ServiceName + "/RefreshToken"
	NotesService_Ping_FullMethodName                         = "/" + ServiceName + "/Ping"
)

// NotesServiceClient is the client API for the notes service.
type NotesServiceClient interface {
	CreateNote(ctx context.Context, in *CreateNoteRequest, opts ...grpc.CallOption) (*CreateNoteResponse, error)
	UpdateNote(ctx context.Context, in *UpdateNoteRequest, opts ...grpc.CallOption) (*UpdateNoteResponse, error)
	GetNotes(ctx context.Context, in *GetNotesRequest, opts ...grpc.CallOption) (*GetNotesResponse, error)
	RefreshNote(ctx context.Context, in *RefreshNoteRequest, opts ...grpc.CallOption) (*RefreshNoteResponse, error)
	AddUser(ctx context.Context, in *AddUserRequest, opts ...grpc.CallOption) (*AddUserResponse, error)
	RemoveUser(ctx context.Context, in *RemoveUserRequest, opts ...grpc.CallOption) (*RemoveUserResponse, error)
	DeleteNote(ctx context.Context, in *DeleteNoteRequest, opts ...grpc.CallOption) (*DeleteNoteResponse, error)
	EncryptedSymmetricKeyForNote(ctx context.Context, in *EncryptedSymmetricKeyForNoteRequest, opts ...grpc.CallOption) (*EncryptedSymmetricKeyForNoteResponse, error)
	Whoami(ctx context.Context, in *WhoamiRequest, opts ...grpc.CallOption) (*WhoamiResponse, error)
	RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type notesServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewNotesServiceClient returns a client that sends every call with the JSON
// content-subtype.
func NewNotesServiceClient(cc grpc.ClientConnInterface) NotesServiceClient {
	return &notesServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *notesServiceClient) CreateNote(ctx context.Context, in *CreateNoteRequest, opts ...grpc.CallOption) (*CreateNoteResponse, error) {
	return invoke[CreateNoteResponse](ctx, c.cc, NotesService_CreateNote_FullMethodName, in, opts)
}

func (c *notesServiceClient) UpdateNote(ctx context.Context, in *UpdateNoteRequest, opts ...grpc.CallOption) (*UpdateNoteResponse, error) {
	return invoke[UpdateNoteResponse](ctx, c.cc, NotesService_UpdateNote_FullMethodName, in, opts)
}

func (c *notesServiceClient) GetNotes(ctx context.Context, in *GetNotesRequest, opts ...grpc.CallOption) (*GetNotesResponse, error) {
	return invoke[GetNotesResponse](ctx, c.cc, NotesService_GetNotes_FullMethodName, in, opts)
}

func (c *notesServiceClient) RefreshNote(ctx context.Context, in *RefreshNoteRequest, opts ...grpc.CallOption) (*RefreshNoteResponse, error) {
	return invoke[RefreshNoteResponse](ctx, c.cc, NotesService_RefreshNote_FullMethodName, in, opts)
}

func (c *notesServiceClient) AddUser(ctx context.Context, in *AddUserRequest, opts ...grpc.CallOption) (*AddUserResponse, error) {
	return invoke[AddUserResponse](ctx, c.cc, NotesService_AddUser_FullMethodName, in, opts)
}

func (c *notesServiceClient) RemoveUser(ctx context.Context, in *RemoveUserRequest, opts ...grpc.CallOption) (*RemoveUserResponse, error) {
	return invoke[RemoveUserResponse](ctx, c.cc, NotesService_RemoveUser_FullMethodName, in, opts)
}

func (c *notesServiceClient) DeleteNote(ctx context.Context, in *DeleteNoteRequest, opts ...grpc.CallOption) (*DeleteNoteResponse, error) {
	return invoke[DeleteNoteResponse](ctx, c.cc, NotesService_DeleteNote_FullMethodName, in, opts)
}

func (c *notesServiceClient) EncryptedSymmetricKeyForNote(ctx context.Context, in *EncryptedSymmetricKeyForNoteRequest, opts ...grpc.CallOption) (*EncryptedSymmetricKeyForNoteResponse, error) {
	return invoke[EncryptedSymmetricKeyForNoteResponse](ctx, c.cc, NotesService_EncryptedSymmetricKeyForNote_FullMethodName, in, opts)
}

func (c *notesServiceClient) Whoami(ctx context.Context, in *WhoamiRequest, opts ...grpc.CallOption) (*WhoamiResponse, error) {
	return invoke[WhoamiResponse](ctx, c.cc, NotesService_Whoami_FullMethodName, in, opts)
}

func (c *notesServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c.cc, NotesService_RegisterUser_FullMethodName, in, opts)
}

func (c *notesServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, NotesService_GetSalt_FullMethodName, in, opts)
}

func (c *notesServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, NotesService_Login_FullMethodName, in, opts)
}

func (c *notesServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, NotesService_RefreshToken_FullMethodName, in, opts)
}

func (c *notesServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, NotesService_Ping_FullMethodName, in, opts)
}

// NotesServiceServer is the server API for the notes service. Implementations
// must embed UnimplementedNotesServiceServer.
type NotesServiceServer interface {
	CreateNote(context.Context, *CreateNoteRequest) (*CreateNoteResponse, error)
	UpdateNote(context.Context, *UpdateNoteRequest) (*UpdateNoteResponse, error)
	GetNotes(context.Context, *GetNotesRequest) (*GetNotesResponse, error)
	RefreshNote(context.Context, *RefreshNoteRequest) (*RefreshNoteResponse, error)
	AddUser(context.Context, *AddUserRequest) (*AddUserResponse, error)
	RemoveUser(context.Context, *RemoveUserRequest) (*RemoveUserResponse, error)
	DeleteNote(context.Context, *DeleteNoteRequest) (*DeleteNoteResponse, error)
	EncryptedSymmetricKeyForNote(context.Context, *EncryptedSymmetricKeyForNoteRequest) (*EncryptedSymmetricKeyForNoteResponse, error)
	Whoami(context.Context, *WhoamiRequest) (*WhoamiResponse, error)
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	mustEmbedUnimplementedNotesServiceServer()
}

// UnimplementedNotesServiceServer answers every method with codes.Unimplemented.
type UnimplementedNotesServiceServer struct{}

func (UnimplementedNotesServiceServer) CreateNote(context.Context, *CreateNoteRequest) (*CreateNoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateNote not implemented")
}
func (UnimplementedNotesServiceServer) UpdateNote(context.Context, *UpdateNoteRequest) (*UpdateNoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateNote not implemented")
}
func (UnimplementedNotesServiceServer) GetNotes(context.Context, *GetNotesRequest) (*GetNotesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetNotes not implemented")
}
func (UnimplementedNotesServiceServer) RefreshNote(context.Context, *RefreshNoteRequest) (*RefreshNoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshNote not implemented")
}
func (UnimplementedNotesServiceServer) AddUser(context.Context, *AddUserRequest) (*AddUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddUser not implemented")
}
func (UnimplementedNotesServiceServer) RemoveUser(context.Context, *RemoveUserRequest) (*RemoveUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveUser not implemented")
}
func (UnimplementedNotesServiceServer) DeleteNote(context.Context, *DeleteNoteRequest) (*DeleteNoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteNote not implemented")
}
func (UnimplementedNotesServiceServer) EncryptedSymmetricKeyForNote(context.Context, *EncryptedSymmetricKeyForNoteRequest) (*EncryptedSymmetricKeyForNoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EncryptedSymmetricKeyForNote not implemented")
}
func (UnimplementedNotesServiceServer) Whoami(context.Context, *WhoamiRequest) (*WhoamiResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Whoami not implemented")
}
func (UnimplementedNotesServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterUser not implemented")
}
func (UnimplementedNotesServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedNotesServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedNotesServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedNotesServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedNotesServiceServer) mustEmbedUnimplementedNotesServiceServer() {}

func RegisterNotesServiceServer(s grpc.ServiceRegistrar, srv NotesServiceServer) {
	s.RegisterService(&NotesService_ServiceDesc, srv)
}

// unary builds the method descriptor for one RPC, decoding into Req and
// passing through the server's interceptor chain.
func unary[Req, Resp any](name string, call func(NotesServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(NotesServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(NotesServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var NotesService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateNote", NotesServiceServer.CreateNote),
		unary("UpdateNote", NotesServiceServer.UpdateNote),
		unary("GetNotes", NotesServiceServer.GetNotes),
		unary("RefreshNote", NotesServiceServer.RefreshNote),
		unary("AddUser", NotesServiceServer.AddUser),
		unary("RemoveUser", NotesServiceServer.RemoveUser),
		unary("DeleteNote", NotesServiceServer.DeleteNote),
		unary("EncryptedSymmetricKeyForNote", NotesServiceServer.EncryptedSymmetricKeyForNote),
		unary("Whoami", NotesServiceServer.Whoami),
		unary("RegisterUser", NotesServiceServer.RegisterUser),
		unary("GetSalt", NotesServiceServer.GetSalt),
		unary("Login", NotesServiceServer.Login),
		unary("RefreshToken", NotesServiceServer.RefreshToken),
		unary("Ping", NotesServiceServer.Ping),
	},
	Streams: []grpc.StreamDesc{},
}
