package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestJSONCodec_WireNames(t *testing.T) {
	c := jsonCodec{}
	exp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := c.Marshal(&AuthResponse{Name: "ada", Email: "ada@example.com", Role: "USER", Token: "t", ExpiresAt: exp})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","email":"ada@example.com","role":"USER","token":"t","expires_at":"2025-03-01T12:00:00Z"}`, string(b))

	var in SignupRequest
	require.NoError(t, c.Unmarshal([]byte(`{"username":"ada","email":"a@b.co","password":"pw"}`), &in))
	assert.Equal(t, SignupRequest{Username: "ada", Email: "a@b.co", Password: "pw"}, in)

	assert.Error(t, c.Unmarshal([]byte(`{`), &in))
}

func TestServiceDesc(t *testing.T) {
	assert.Equal(t, "smartq.auth.AuthService", AuthServiceDesc.ServiceName)
	names := make([]string, 0, len(AuthServiceDesc.Methods))
	for _, m := range AuthServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.Equal(t, []string{"Signup", "Login", "WhoAmI", "Ping"}, names)
	assert.Equal(t, "/smartq.auth.AuthService/WhoAmI", MethodWhoAmI)
}
