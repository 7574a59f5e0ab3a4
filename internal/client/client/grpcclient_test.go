package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
)

type fakeTokenServer struct {
	salt []byte

	loginResp map[string]any
	loginErr  error

	refreshResp map[string]any
	refreshErr  error

	pingStatus string

	lastLogin       *structpb.Struct
	lastRefresh     *structpb.Struct
	lastRevoke      *structpb.Struct
	lastRevokeToken string
}

func (f *fakeTokenServer) GetSalt(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if StringField(req, FieldUsername) != "alice" {
		return nil, status.Error(codes.Unauthenticated, "unknown user")
	}
	return structpb.NewStruct(map[string]any{FieldSalt: EncodeBytes(f.salt)})
}

func (f *fakeTokenServer) Login(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return structpb.NewStruct(f.loginResp)
}

func (f *fakeTokenServer) RefreshToken(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f.lastRefresh = req
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return structpb.NewStruct(f.refreshResp)
}

func (f *fakeTokenServer) Revoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f.lastRevoke = req
	f.lastRevokeToken = AccessTokenFromContext(ctx)
	return &structpb.Struct{}, nil
}

func (f *fakeTokenServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{FieldStatus: f.pingStatus})
}

func startServer(t *testing.T, srv TokenServiceServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterTokenServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestGetSalt(t *testing.T) {
	c := startServer(t, &fakeTokenServer{salt: []byte{1, 2, 3}})

	salt, err := c.GetSalt(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, salt)

	_, err = c.GetSalt(context.Background(), "mallory")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_ExplicitExpiry(t *testing.T) {
	exp := time.Date(2031, 2, 3, 4, 5, 6, 0, time.UTC)
	f := &fakeTokenServer{loginResp: map[string]any{
		FieldAccessKeyID:     "AKIA",
		FieldSecretAccessKey: "secret",
		FieldAccessToken:     "opaque",
		FieldRefreshToken:    "rt",
		FieldExpiresAt:       exp.Format(time.RFC3339),
	}}
	c := startServer(t, f)

	got, err := c.Login(context.Background(), "alice", []byte("verifier"))
	require.NoError(t, err)

	assert.Equal(t, models.Credentials{
		AccessKeyID: "AKIA", SecretAccessKey: "secret",
		AccessToken: "opaque", RefreshToken: "rt", Expiry: exp,
	}, got)

	verifier, err := DecodeBytes(f.lastLogin, FieldVerifier)
	require.NoError(t, err)
	assert.Equal(t, []byte("verifier"), verifier)
	assert.Equal(t, "alice", StringField(f.lastLogin, FieldUsername))
}

func TestRefresh_ExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second).UTC()
	f := &fakeTokenServer{refreshResp: map[string]any{
		FieldAccessToken:  signedToken(t, exp),
		FieldRefreshToken: "rt2",
	}}
	c := startServer(t, f)

	got, err := c.Refresh(context.Background(), "rt1")
	require.NoError(t, err)

	assert.Equal(t, "rt2", got.RefreshToken)
	assert.True(t, exp.Equal(got.Expiry), "expiry %v, want %v", got.Expiry, exp)
	assert.Equal(t, "rt1", StringField(f.lastRefresh, FieldRefreshToken))
}

func TestRefresh_Rejected(t *testing.T) {
	c := startServer(t, &fakeTokenServer{refreshErr: status.Error(codes.PermissionDenied, "revoked")})

	_, err := c.Refresh(context.Background(), "rt")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_MissingAccessToken(t *testing.T) {
	c := startServer(t, &fakeTokenServer{loginResp: map[string]any{FieldRefreshToken: "rt"}})

	_, err := c.Login(context.Background(), "alice", []byte("v"))
	assert.Error(t, err)
}

func TestRevoke_SendsAccessToken(t *testing.T) {
	f := &fakeTokenServer{}
	c := startServer(t, f)

	err := c.Revoke(context.Background(), models.Credentials{AccessToken: "at", RefreshToken: "rt"})
	require.NoError(t, err)

	assert.Equal(t, "at", f.lastRevokeToken)
	assert.Equal(t, "rt", StringField(f.lastRevoke, FieldRefreshToken))
}

func TestPing(t *testing.T) {
	assert.NoError(t, startServer(t, &fakeTokenServer{pingStatus: "OK"}).Ping(context.Background()))
	assert.ErrorIs(t, startServer(t, &fakeTokenServer{pingStatus: "DEGRADED"}).Ping(context.Background()), common.ErrUnavailable)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "unauthenticated", in: status.Error(codes.Unauthenticated, "x"), want: common.ErrUnauthorized},
		{name: "permission denied", in: status.Error(codes.PermissionDenied, "x"), want: common.ErrUnauthorized},
		{name: "unavailable", in: status.Error(codes.Unavailable, "x"), want: common.ErrUnavailable},
		{name: "deadline", in: status.Error(codes.DeadlineExceeded, "x"), want: common.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	assert.NoError(t, mapError(nil))

	other := mapError(status.Error(codes.Internal, "boom"))
	assert.NotErrorIs(t, other, common.ErrUnauthorized)
	assert.NotErrorIs(t, other, common.ErrUnavailable)
	assert.ErrorContains(t, other, "rpc error")
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
}
