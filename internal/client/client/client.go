package client

import (
	"context"
	"time"
)

// Session is what a successful signup or login yields.
type Session struct {
	Token     string
	Name      string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Identity is the server's view of the presented token.
type Identity struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

type Client interface {
	Close() error
	Signup(ctx context.Context, userName, email string, password []byte) (*Session, error)
	Login(ctx context.Context, email string, password []byte) (*Session, error)
	WhoAmI(ctx context.Context) (*Identity, error)
	Ping(ctx context.Context) error
	Logout()
	LoggedIn() bool
}
