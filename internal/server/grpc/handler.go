package grpc

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/authdir/internal/common"
	pb "github.com/dmitrijs2005/authdir/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	_, err := s.users.Register(ctx, req.GetUsername(), req.GetPassword(), req.GetRole())

	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.log(ctx).Info(ctx, "Registered", "username", req.GetUsername(), "role", req.GetRole())
	return &pb.RegisterResponse{Success: true, Message: "user registered"}, nil

}

func (s *GRPCServer) Authenticate(ctx context.Context, req *pb.AuthenticateRequest) (*pb.AuthenticateResponse, error) {

	token, _, err := s.users.Authenticate(ctx, req.GetUsername(), req.GetPassword())

	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AuthenticateResponse{Success: true, Message: "authenticated", Token: token}, nil

}

func (s *GRPCServer) ValidateToken(ctx context.Context, req *pb.ValidateTokenRequest) (*pb.ValidateTokenResponse, error) {

	claims, err := s.users.ValidateToken(ctx, req.GetToken())

	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.ValidateTokenResponse{
		Success:    true,
		Message:    "token valid",
		Username:   claims.Username,
		Role:       claims.Role,
		Expiration: strconv.FormatInt(claims.Expiration, 10),
	}, nil

}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{}, nil

}

// toStatus maps service errors onto gRPC codes. Internal details are logged
// and never sent to the caller.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "user already exists")
	case errors.Is(err, common.ErrInvalidToken):
		s.log(ctx).Debug(ctx, "token rejected", "error", err)
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	default:
		s.log(ctx).Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
