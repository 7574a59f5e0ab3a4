package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/clipkeeper/internal/client/client"
	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/server/users"
)

func (s *GRPCServer) GetSalt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username := client.StringField(req, client.FieldUsername)
	if username == "" {
		return nil, status.Error(codes.InvalidArgument, "username is required")
	}

	salt, err := s.users.GetSalt(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "get salt", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return structpb.NewStruct(map[string]any{client.FieldSalt: client.EncodeBytes(salt)})
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username := client.StringField(req, client.FieldUsername)
	verifier, err := client.DecodeBytes(req, client.FieldVerifier)
	if username == "" || err != nil {
		return nil, status.Error(codes.InvalidArgument, "username and verifier are required")
	}

	sess, err := s.users.Login(ctx, username, verifier)
	if err != nil {
		return nil, s.statusFor(ctx, "login", err)
	}
	s.logger.Info(ctx, "signed in", "username", username)
	return sessionToStruct(sess)
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := client.StringField(req, client.FieldRefreshToken)
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	sess, err := s.users.Refresh(ctx, token)
	if err != nil {
		return nil, s.statusFor(ctx, "refresh", err)
	}
	return sessionToStruct(sess)
}

func (s *GRPCServer) Revoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := client.StringField(req, client.FieldRefreshToken)
	if token == "" {
		return &structpb.Struct{}, nil
	}

	if err := s.users.Revoke(ctx, userIDFromContext(ctx), token); err != nil {
		return nil, s.statusFor(ctx, "revoke", err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{client.FieldStatus: client.StatusOK})
}

func (s *GRPCServer) statusFor(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		s.logger.Error(ctx, op, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func sessionToStruct(sess *users.Session) (*structpb.Struct, error) {
	return client.CredentialsToStruct(models.Credentials{
		AccessKeyID:     sess.AccessKeyID,
		SecretAccessKey: sess.SecretAccessKey,
		AccessToken:     sess.AccessToken,
		RefreshToken:    sess.RefreshToken,
		Expiry:          sess.ExpiresAt,
	})
}
