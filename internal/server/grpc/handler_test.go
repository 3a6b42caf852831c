package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/smartq/internal/common"
	"github.com/dmitrijs2005/smartq/internal/logging"
	"github.com/dmitrijs2005/smartq/internal/rpc"
	"github.com/dmitrijs2005/smartq/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"validation", fmt.Errorf("%w: email: must be a valid email address", common.ErrorValidation), codes.InvalidArgument, "validation error: email: must be a valid email address"},
		{"conflict", common.ConflictError{Field: "username"}, codes.AlreadyExists, "account already exists"},
		{"unauthorized", common.ErrorUnauthorized, codes.Unauthenticated, "invalid credentials"},
		{"throttled", common.ErrorTooManyAttempts, codes.ResourceExhausted, "too many attempts"},
		{"expired", common.ErrTokenExpired, codes.Unauthenticated, common.ErrTokenExpired.Error()},
		{"signature", common.ErrTokenSignature, codes.Unauthenticated, "invalid token"},
		{"malformed", common.ErrTokenMalformed, codes.Unauthenticated, "invalid token"},
		{"storage", errors.New("db error: connection refused"), codes.Internal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := status.Convert(toStatus(tt.err))
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}

	assert.NoError(t, toStatus(nil))
}

func TestWhoAmI_WithoutClaims(t *testing.T) {
	s, err := NewGRPCServer("", logging.Nop{}, &fakeUsers{})
	require.NoError(t, err)

	_, err = s.WhoAmI(context.Background(), &rpc.WhoAmIRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSignup_PassesFieldsThrough(t *testing.T) {
	users := &fakeUsers{signupErr: errors.New("boom")}
	s, err := NewGRPCServer("", logging.Nop{}, users)
	require.NoError(t, err)

	_, err = s.Signup(context.Background(), &rpc.SignupRequest{Username: "ada", Email: "ada@example.com", Password: "pw"})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "ada", users.gotUserName)
	assert.Equal(t, "ada@example.com", users.gotEmail)
	assert.Equal(t, "pw", users.gotPassword)
}

func TestToAuthResponse_UTC(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	exp := time.Date(2025, 1, 1, 15, 0, 0, 0, loc)
	r := toAuthResponse(&services.AuthResult{ExpiresAt: exp})
	assert.Equal(t, time.UTC, r.ExpiresAt.Location())
	assert.True(t, exp.Equal(r.ExpiresAt))
}
