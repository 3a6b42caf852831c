package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/dmitrijs2005/smartq/internal/rpc"
	"github.com/dmitrijs2005/smartq/internal/server/auth"
	"github.com/dmitrijs2005/smartq/internal/server/services"
	"google.golang.org/grpc"
)

// AuthService is the part of services.UserService the transport calls.
type AuthService interface {
	Signup(ctx context.Context, userName, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address string
	users   AuthService
	logger  logging.Logger
}

var _ rpc.AuthServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us AuthService) (*GRPCServer, error) {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
	}, nil
}

// newServer builds the grpc.Server with interceptors and the auth service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
