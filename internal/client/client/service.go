package client

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
)

const TokenServiceName = "clipkeeper.auth.v1.TokenService"

const (
	methodGetSalt      = "GetSalt"
	methodLogin        = "Login"
	methodRefreshToken = "RefreshToken"
	methodRevoke       = "Revoke"
	methodPing         = "Ping"
)

// Field names used in request and response structs.
const (
	FieldUsername        = "username"
	FieldSalt            = "salt"
	FieldVerifier        = "verifier"
	FieldAccessKeyID     = "access_key_id"
	FieldSecretAccessKey = "secret_access_key"
	FieldAccessToken     = "access_token"
	FieldRefreshToken    = "refresh_token"
	FieldExpiresAt       = "expires_at"
	FieldStatus          = "status"
)

// StatusOK is the Ping status of a healthy service.
const StatusOK = "OK"

// TokenServiceServer is implemented by token service backends.
type TokenServiceServer interface {
	GetSalt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Revoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(TokenServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TokenServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TokenServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func fullMethod(method string) string {
	return "/" + TokenServiceName + "/" + method
}

// TokenServiceDesc describes the token service for grpc.Server.RegisterService.
var TokenServiceDesc = grpc.ServiceDesc{
	ServiceName: TokenServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodGetSalt, Handler: unaryHandler(methodGetSalt, TokenServiceServer.GetSalt)},
		{MethodName: methodLogin, Handler: unaryHandler(methodLogin, TokenServiceServer.Login)},
		{MethodName: methodRefreshToken, Handler: unaryHandler(methodRefreshToken, TokenServiceServer.RefreshToken)},
		{MethodName: methodRevoke, Handler: unaryHandler(methodRevoke, TokenServiceServer.Revoke)},
		{MethodName: methodPing, Handler: unaryHandler(methodPing, TokenServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clipkeeper/auth/v1/token_service.proto",
}

// RegisterTokenServiceServer registers srv on s.
func RegisterTokenServiceServer(s grpc.ServiceRegistrar, srv TokenServiceServer) {
	s.RegisterService(&TokenServiceDesc, srv)
}

// AccessTokenFromContext returns the access token a client attached to an
// incoming call, or "".
func AccessTokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get(common.AccessTokenHeaderName)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
