package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/rpc"
	"github.com/dmitrijs2005/smartq/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.AuthResponse, error) {

	s.logger.Info(ctx, "Signup request")

	result, err := s.users.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "signup", err)
	}

	return toAuthResponse(result), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.AuthResponse, error) {

	result, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	return toAuthResponse(result), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *rpc.WhoAmIRequest) (*rpc.WhoAmIResponse, error) {

	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	resp := &rpc.WhoAmIResponse{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {

	return &rpc.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st := toStatus(err)
	if st == nil {
		return nil
	}
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, op+" failed", "error", err.Error())
	}
	return st
}

func toAuthResponse(r *services.AuthResult) *rpc.AuthResponse {
	return &rpc.AuthResponse{
		Name:      r.UserName,
		Email:     r.Email,
		Role:      r.Role,
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.UTC(),
	}
}

// toStatus maps service and token errors to gRPC statuses. Internal
// details never reach the caller.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, common.ErrorAlreadyExists.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorTooManyAttempts):
		return status.Error(codes.ResourceExhausted, common.ErrorTooManyAttempts.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
