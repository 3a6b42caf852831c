package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dmitrijs2005/smartq/internal/client/client"
	"github.com/dmitrijs2005/smartq/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for a username, email and password and creates an account.
// On success the returned session becomes current.
func (a *App) Signup(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.client.Signup(ctx, userName, email, password)
	if err != nil {
		log.Printf("Signup unsuccessful: %s", err.Error())
		return err
	}

	a.session = sess
	fmt.Fprintf(a.out, "Welcome, %s! Session valid until %s\n", sess.Name, sess.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// Login prompts for credentials and authenticates. Every credential failure
// is reported the same way.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.session = sess
	a.setMode(ModeOnline)
	log.Printf("Login successful")
	return nil
}

// WhoAmI asks the server to verify the current token and prints the result.
func (a *App) WhoAmI(ctx context.Context) error {
	who, err := a.client.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			a.session = nil
		}
		log.Printf("whoami: %s", err.Error())
		return err
	}
	fmt.Fprintf(a.out, "%s (%s), token expires %s\n", who.Subject, who.Role, who.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// Logout forgets the current session.
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.session = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Status pings the server and prints the connectivity mode.
func (a *App) Status(ctx context.Context) error {
	a.checkOnline(ctx)
	fmt.Fprintf(a.out, "server %s is %s\n", a.config.ServerEndpointAddr, a.mode())
	return nil
}
