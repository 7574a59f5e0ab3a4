// Package grpc serves the token service over gRPC.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/clipkeeper/internal/client/client"
	"github.com/dmitrijs2005/clipkeeper/internal/logging"
	"github.com/dmitrijs2005/clipkeeper/internal/server/users"
)

type GRPCServer struct {
	address string
	users   *users.Service
	logger  logging.Logger
}

func NewGRPCServer(addr string, l logging.Logger, us *users.Service) *GRPCServer {
	return &GRPCServer{
		address: addr,
		logger:  l.With("module", "grpc_server"),
		users:   us,
	}
}

// newServer builds a grpc.Server with the token service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	client.RegisterTokenServiceServer(srv, s)
	return srv
}

// Run serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())
	return srv.Serve(lis)
}
