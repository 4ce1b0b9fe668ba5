package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/authdir/internal/logging"
	pb "github.com/dmitrijs2005/authdir/internal/proto"
	"github.com/dmitrijs2005/authdir/internal/server/auth"
	"github.com/dmitrijs2005/authdir/internal/server/metrics"
	"github.com/dmitrijs2005/authdir/internal/server/models"
	"google.golang.org/grpc"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, userName, password, role string) (*models.User, error)
	Authenticate(ctx context.Context, userName, password string) (string, auth.SessionClaims, error)
	ValidateToken(ctx context.Context, token string) (auth.SessionClaims, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthenticationServer
	address        string
	users          UserService
	metrics        *metrics.Metrics
	logger         logging.Logger
	requestTimeout time.Duration
}

func NewGRPCServer(a string, l logging.Logger, us UserService, m *metrics.Metrics, requestTimeout time.Duration) (*GRPCServer, error) {
	return &GRPCServer{
		address:        a,
		logger:         l.With("module", "grpc_server"),
		users:          us,
		metrics:        m,
		requestTimeout: requestTimeout,
	}, nil
}

// newServer creates the gRPC server with interceptors and the service
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestIDInterceptor,
		s.deadlineInterceptor,
		s.metricsInterceptor,
		s.loggingInterceptor,
	))
	pb.RegisterAuthenticationServer(srv, s)
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

// Serve accepts connections on listen until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
