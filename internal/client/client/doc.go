// Package client contains the client-side transport and local database
// bootstrap for clipkeeper.
//
// # Token service
//
// TokenClient is the contract the credential manager uses to talk to the
// token service: GetSalt, Login, Refresh, Revoke and Ping. GRPCClient
// implements it over gRPC. Messages are google.protobuf.Struct values, and
// the service is described by TokenServiceDesc so a server (or a test) can
// register any TokenServiceServer implementation.
//
// # Error Handling
//
// Status codes are mapped to sentinels from internal/common:
// Unauthenticated and PermissionDenied become common.ErrUnauthorized,
// Unavailable and DeadlineExceeded become common.ErrUnavailable.
//
// # Local database
//
// InitDatabase opens the SQLite file and applies the embedded goose
// migrations from internal/client/migrations.
package client
