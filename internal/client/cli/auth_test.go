package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/smartq/internal/client/client"
	"github.com/dmitrijs2005/smartq/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return append([]byte(nil), password...), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeClient struct {
	signupArgs []string
	loginArgs  []string
	gotPass    []byte

	session  *client.Session
	authErr  error
	who      *client.Identity
	whoErr   error
	pingErr  error
	loggedIn bool
	closed   bool
}

func (f *fakeClient) Close() error { f.closed = true; return nil }
func (f *fakeClient) Signup(_ context.Context, userName, email string, password []byte) (*client.Session, error) {
	f.signupArgs = []string{userName, email}
	f.gotPass = append([]byte(nil), password...)
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.loggedIn = true
	return f.session, nil
}
func (f *fakeClient) Login(_ context.Context, email string, password []byte) (*client.Session, error) {
	f.loginArgs = []string{email}
	f.gotPass = append([]byte(nil), password...)
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.loggedIn = true
	return f.session, nil
}
func (f *fakeClient) WhoAmI(context.Context) (*client.Identity, error) { return f.who, f.whoErr }
func (f *fakeClient) Ping(context.Context) error                      { return f.pingErr }
func (f *fakeClient) Logout()                                         { f.loggedIn = false }
func (f *fakeClient) LoggedIn() bool                                  { return f.loggedIn }

func newTestApp(f *fakeClient) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	c := &config.Config{}
	c.LoadDefaults()
	return &App{config: c, client: f, out: &out}, &out
}

func testSession() *client.Session {
	return &client.Session{Token: "T", Name: "ada", Email: "ada@example.com", Role: "USER", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestSignup_Success(t *testing.T) {
	f := &fakeClient{session: testSession()}
	a, out := newTestApp(f)
	stubInputs(t, []string{"ada", "ada@example.com"}, []byte("correct horse"))

	require.NoError(t, a.Signup(context.Background()))
	assert.Equal(t, []string{"ada", "ada@example.com"}, f.signupArgs)
	assert.Equal(t, "correct horse", string(f.gotPass))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Welcome, ada!")
}

func TestSignup_Conflict(t *testing.T) {
	f := &fakeClient{authErr: client.ErrAlreadyExists}
	a, _ := newTestApp(f)
	stubInputs(t, []string{"ada", "ada@example.com"}, []byte("correct horse"))

	err := a.Signup(context.Background())
	assert.ErrorIs(t, err, client.ErrAlreadyExists)
	assert.False(t, a.isLoggedIn())
}

func TestLogin_Success(t *testing.T) {
	f := &fakeClient{session: testSession()}
	a, _ := newTestApp(f)
	stubInputs(t, []string{"ada@example.com"}, []byte("correct horse"))

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, []string{"ada@example.com"}, f.loginArgs)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, ModeOnline, a.Mode)
	assert.Equal(t, "(ada@example.com online)", a.getStatus())
}

func TestLogin_Unavailable(t *testing.T) {
	f := &fakeClient{authErr: client.ErrUnavailable}
	a, _ := newTestApp(f)
	stubInputs(t, []string{"ada@example.com"}, []byte("pw"))

	err := a.Login(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, ModeOffline, a.Mode)
	assert.False(t, a.isLoggedIn())
}

func TestWhoAmI_ExpiredClearsSession(t *testing.T) {
	f := &fakeClient{whoErr: client.ErrSessionExpired, loggedIn: true}
	a, _ := newTestApp(f)
	a.session = testSession()

	err := a.WhoAmI(context.Background())
	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Nil(t, a.session)
}

func TestWhoAmI_Prints(t *testing.T) {
	f := &fakeClient{who: &client.Identity{Subject: "ada@example.com", Role: "USER", ExpiresAt: time.Now().Add(time.Hour)}, loggedIn: true}
	a, out := newTestApp(f)
	a.session = testSession()

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "ada@example.com (USER)")
}

func TestLogout(t *testing.T) {
	f := &fakeClient{loggedIn: true}
	a, _ := newTestApp(f)
	a.session = testSession()

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, f.loggedIn)
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.getStatus())
}

func TestStatus_TracksPing(t *testing.T) {
	f := &fakeClient{}
	a, out := newTestApp(f)

	require.NoError(t, a.Status(context.Background()))
	assert.Equal(t, ModeOnline, a.Mode)

	f.pingErr = client.ErrUnavailable
	require.NoError(t, a.Status(context.Background()))
	assert.Equal(t, ModeOffline, a.Mode)
	assert.Contains(t, out.String(), "is offline")
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	f := &fakeClient{}
	a, _ := newTestApp(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
