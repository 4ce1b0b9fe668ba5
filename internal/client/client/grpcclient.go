package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authdir/internal/common"
	pb "github.com/dmitrijs2005/authdir/internal/proto"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// TokenInfo is what the server reports about a valid token.
type TokenInfo struct {
	Username  string
	Role      string
	ExpiresAt time.Time
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AuthenticationClient
}

func withRequestID(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(common.RequestIDHeaderName)) > 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, common.RequestIDHeaderName, uuid.NewString())
}

func (s *GRPCClient) requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withRequestID(ctx), method, req, reply, cc, opts...)
}

// NewAuthClient connects to endpointURL. Extra dial options are appended to
// the defaults (insecure transport, request id interceptor).
func NewAuthClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.requestIDInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewAuthenticationClient(conn)
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, userName, password, role string) error {

	req := &pb.RegisterRequest{Username: userName, Password: password, Role: role}

	_, err := s.client.Register(ctx, req)

	if err != nil {
		return s.mapError(err)
	}

	return nil

}

// Authenticate returns a session token for the given credentials.
func (s *GRPCClient) Authenticate(ctx context.Context, userName, password string) (string, error) {

	req := &pb.AuthenticateRequest{Username: userName, Password: password}

	resp, err := s.client.Authenticate(ctx, req)

	if err != nil {
		return "", s.mapError(err)
	}

	return resp.GetToken(), nil

}

func (s *GRPCClient) ValidateToken(ctx context.Context, token string) (*TokenInfo, error) {

	resp, err := s.client.ValidateToken(ctx, &pb.ValidateTokenRequest{Token: token})
	if err != nil {
		return nil, s.mapError(err)
	}

	exp, err := strconv.ParseInt(resp.GetExpiration(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad expiration %q: %w", resp.GetExpiration(), err)
	}

	return &TokenInfo{Username: resp.GetUsername(), Role: resp.GetRole(), ExpiresAt: time.Unix(exp, 0)}, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	_, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
