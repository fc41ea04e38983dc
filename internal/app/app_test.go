package app

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harrylevesque/emailforms/internal/config"
	"github.com/harrylevesque/emailforms/internal/devserver"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type passwords []string

func (p *passwords) next() (string, error) {
	if len(*p) == 0 {
		return "", errors.New("no answer")
	}
	a := (*p)[0]
	*p = (*p)[1:]
	return a, nil
}

func (p *passwords) Prompt(string) (string, error)   { return p.next() }
func (p *passwords) Password(string) (string, error) { return p.next() }
func (p *passwords) Confirm(string) (bool, error)    { return true, nil }

type fixture struct {
	cfg    *config.Config
	ts     *httptest.Server
	out    *syncBuffer
	prompt *passwords
}

func newFixture(t *testing.T, backend string) *fixture {
	t.Helper()
	srv, err := devserver.New()
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.APIURL = ts.URL + "/api"
	cfg.Origin = ts.URL
	cfg.Storage.Backend = backend
	cfg.Storage.Path = filepath.Join(t.TempDir(), "client.db")
	return &fixture{cfg: cfg, ts: ts, out: &syncBuffer{}, prompt: &passwords{}}
}

func (f *fixture) open(t *testing.T) *App {
	t.Helper()
	a, err := New(f.cfg, Options{
		Out:        f.out,
		Prompter:   f.prompt,
		HTTPClient: f.ts.Client(),
		Logger:     logging.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = "redis"
	_, err := New(cfg, Options{Logger: logging.Nop()})
	assert.Error(t, err)
}

func TestStartWithoutSessionShowsLogin(t *testing.T) {
	f := newFixture(t, storage.BackendMemory)
	a := f.open(t)

	a.Start(context.Background(), "/forms")
	assert.Equal(t, "/login", a.Router.Path())
	assert.Equal(t, "Login - Email Form System", a.Terminal.Title())
}

func TestShellSession(t *testing.T) {
	f := newFixture(t, storage.BackendMemory)
	a := f.open(t)
	ctx := context.Background()
	a.Start(ctx, "/")
	require.Equal(t, "/login", a.Router.Path())

	*f.prompt = passwords{devserver.AdminPassword}
	require.NoError(t, a.Exec(ctx, "login "+devserver.AdminEmail))
	assert.Equal(t, "/", a.Router.Path())
	assert.Contains(t, f.out.String(), "Login successful!")
	assert.Contains(t, f.out.String(), "Admin User")

	require.NoError(t, a.Exec(ctx, "go /forms"))
	assert.Equal(t, "/forms", a.Router.Path())
	assert.Contains(t, f.out.String(), "No forms found")

	assert.Error(t, a.Exec(ctx, "go https://example.com/forms"))
	assert.Error(t, a.Exec(ctx, "frobnicate"))

	require.NoError(t, a.Exec(ctx, "back"))
	assert.Equal(t, "/", a.Router.Path())
	require.NoError(t, a.Exec(ctx, "forward"))
	assert.Equal(t, "/forms", a.Router.Path())

	require.NoError(t, a.Exec(ctx, "help"))
	assert.Contains(t, f.out.String(), "upload <file.pdf>")

	require.NoError(t, a.Exec(ctx, "logout"))
	assert.Equal(t, "/login", a.Router.Path())
	assert.False(t, a.Gate.IsAuthenticated())
	assert.Nil(t, a.Store.GetState().User)

	assert.ErrorIs(t, a.Exec(ctx, "quit"), ErrQuit)
}

func TestSessionSurvivesRestart(t *testing.T) {
	f := newFixture(t, storage.BackendSQLite)
	ctx := context.Background()

	first := f.open(t)
	require.NoError(t, first.Gate.Login(ctx, devserver.AdminEmail, devserver.AdminPassword))
	first.Close()

	second := f.open(t)
	second.Start(ctx, "/login")
	assert.True(t, second.Gate.IsAuthenticated())
	assert.Equal(t, "/", second.Router.Path())
	require.NotNil(t, second.Store.GetState().User)
	assert.Equal(t, devserver.AdminEmail, second.Store.GetState().User.Email)
}
