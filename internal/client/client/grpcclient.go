package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
)

// TokenClient is the token service contract.
type TokenClient interface {
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (models.Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (models.Credentials, error)
	Revoke(ctx context.Context, c models.Credentials) error
	Ping(ctx context.Context) error
	Close() error
}

const callTimeout = 12 * time.Second

type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient dials target lazily; extra dial options are appended
// after the defaults (tests pass a bufconn dialer here).
func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn}, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), req, resp); err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (c *GRPCClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	resp, err := c.invoke(ctx, methodGetSalt, map[string]any{FieldUsername: username})
	if err != nil {
		return nil, err
	}
	return DecodeBytes(resp, FieldSalt)
}

func (c *GRPCClient) Login(ctx context.Context, username string, verifier []byte) (models.Credentials, error) {
	resp, err := c.invoke(ctx, methodLogin, map[string]any{
		FieldUsername: username,
		FieldVerifier: EncodeBytes(verifier),
	})
	if err != nil {
		return models.Credentials{}, err
	}
	return credentialsFromStruct(resp)
}

func (c *GRPCClient) Refresh(ctx context.Context, refreshToken string) (models.Credentials, error) {
	resp, err := c.invoke(ctx, methodRefreshToken, map[string]any{FieldRefreshToken: refreshToken})
	if err != nil {
		return models.Credentials{}, err
	}
	return credentialsFromStruct(resp)
}

// Revoke invalidates the refresh token, authenticating with the access
// token.
func (c *GRPCClient) Revoke(ctx context.Context, creds models.Credentials) error {
	ctx = withAccessToken(ctx, creds.AccessToken)
	_, err := c.invoke(ctx, methodRevoke, map[string]any{FieldRefreshToken: creds.RefreshToken})
	return err
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.invoke(ctx, methodPing, map[string]any{})
	if err != nil {
		return err
	}
	if StringField(resp, FieldStatus) != StatusOK {
		return common.ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
