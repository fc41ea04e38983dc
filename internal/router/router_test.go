package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harrylevesque/emailforms/internal/api"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/storage"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGate struct {
	mu      sync.Mutex
	authed  bool
	logouts int
	r       *Router
}

func (g *fakeGate) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authed
}

func (g *fakeGate) Logout(ctx context.Context) {
	g.mu.Lock()
	g.authed = false
	g.logouts++
	g.mu.Unlock()
	g.r.Navigate(ctx, "/login")
}

type recorder struct {
	mu       sync.Mutex
	frames   []ui.Frame
	messages []string
}

func (rec *recorder) RenderFrame(f ui.Frame) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.frames = append(rec.frames, f)
}

func (rec *recorder) Notify(level ui.Level, msg string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.messages = append(rec.messages, level.String()+": "+msg)
}

func (rec *recorder) last() ui.Frame {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.frames[len(rec.frames)-1]
}

type pageFunc func(ctx context.Context) error

func (f pageFunc) Init(ctx context.Context) error { return f(ctx) }

func newRouter(t *testing.T, authed bool) (*Router, *fakeGate, *recorder, *store.Store) {
	t.Helper()
	st := store.New(storage.NewMemoryKV(), logging.Nop())
	gate := &fakeGate{authed: authed}
	rec := &recorder{}
	r, err := New(Options{
		Table:     DefaultTable(),
		Gate:      gate,
		Store:     st,
		Templates: templates.MustLoad(),
		Renderer:  rec,
		Notifier:  rec,
		Origin:    "http://localhost:5000",
	})
	require.NoError(t, err)
	gate.r = r
	return r, gate, rec, st
}

func TestTableValidate(t *testing.T) {
	require.NoError(t, DefaultTable().Validate())

	tbl := DefaultTable()
	login := tbl["/login"]
	login.RequiresAuth = true
	tbl["/login"] = login
	assert.Error(t, tbl.Validate())

	tbl = DefaultTable()
	delete(tbl, "/login")
	assert.ErrorIs(t, tbl.Validate(), errNoLoginRoute)
}

func TestUnknownPathResolvesToDefault(t *testing.T) {
	r, _, rec, _ := newRouter(t, true)

	r.Navigate(context.Background(), "/does-not-exist")
	r.Wait()

	route, ok := r.CurrentRoute()
	require.True(t, ok)
	assert.Equal(t, PageDashboard, route.Page)
	assert.Equal(t, "/", route.Path)
	assert.Equal(t, "Dashboard", rec.last().Title)
	assert.Empty(t, rec.messages)
}

func TestNoDefaultRoute(t *testing.T) {
	r, _, _, _ := newRouter(t, true)
	delete(r.table, "/")
	r.history.Replace("/nowhere")
	_, ok := r.CurrentRoute()
	assert.False(t, ok)
}

func TestProtectedRouteRedirectsToLogin(t *testing.T) {
	r, _, rec, _ := newRouter(t, false)
	called := false
	r.Register(PageForms, pageFunc(func(context.Context) error {
		called = true
		return nil
	}))

	r.Navigate(context.Background(), "/forms")
	r.Wait()

	assert.Equal(t, "/login", r.Path())
	assert.Equal(t, "Login", rec.last().Title)
	assert.False(t, rec.last().Chrome)
	assert.False(t, called)
}

func TestNavigateSamePathDoesNotPush(t *testing.T) {
	r, _, rec, _ := newRouter(t, true)
	ctx := context.Background()

	r.Navigate(ctx, "/forms")
	before := r.History().Len()
	r.Navigate(ctx, "/forms")
	r.Wait()

	assert.Equal(t, before, r.History().Len())
	assert.Len(t, rec.frames, 2)
}

func TestBackForward(t *testing.T) {
	r, _, rec, _ := newRouter(t, true)
	ctx := context.Background()

	r.Navigate(ctx, "/forms")
	r.Navigate(ctx, "/settings")
	require.True(t, r.Back(ctx))
	assert.Equal(t, "/forms", r.Path())
	assert.Equal(t, "Forms", rec.last().Title)

	require.True(t, r.Forward(ctx))
	assert.Equal(t, "/settings", r.Path())
	assert.False(t, r.Forward(ctx))

	n := r.History().Len()
	r.Back(ctx)
	r.Navigate(ctx, "/tracking")
	assert.Equal(t, n, r.History().Len())
	r.Wait()
}

func TestFrameChrome(t *testing.T) {
	r, _, rec, st := newRouter(t, true)
	st.SetState(store.WithUser(&models.User{Name: "Ann", Email: "a@x.com"}))

	r.Navigate(context.Background(), "/tracking")
	r.Wait()

	f := rec.last()
	assert.True(t, f.Chrome)
	assert.Equal(t, "Ann", f.UserName)
	require.Len(t, f.Nav, 6)
	assert.Equal(t, "/", f.Nav[0].Path)
	for _, l := range f.Nav {
		assert.Equal(t, l.Path == "/tracking", l.Active, l.Path)
	}
}

func (rec *recorder) count() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.frames)
}

func TestHeaderFollowsStoreUser(t *testing.T) {
	r, gate, rec, st := newRouter(t, true)
	r.Navigate(context.Background(), "/tracking")
	r.Wait()
	before := rec.last()
	n := rec.count()
	assert.Empty(t, before.UserName)

	st.SetState(store.WithUser(&models.User{Name: "Ann", Email: "a@x.com"}))
	require.Equal(t, n+1, rec.count())
	f := rec.last()
	assert.Equal(t, "Ann", f.UserName)
	assert.Equal(t, "a@x.com", f.UserEmail)
	assert.Equal(t, before.Content, f.Content)

	st.SetState(store.WithForms([]models.Form{{ID: "f1"}}))
	st.SetState(store.WithUser(&models.User{Name: "Ann", Email: "a@x.com"}))
	assert.Equal(t, n+1, rec.count())

	gate.mu.Lock()
	gate.authed = false
	gate.mu.Unlock()
	st.Reset()
	assert.Equal(t, n+1, rec.count())

	r.Close()
	gate.mu.Lock()
	gate.authed = true
	gate.mu.Unlock()
	st.SetState(store.WithUser(&models.User{Name: "Bob", Email: "b@x.com"}))
	assert.Equal(t, n+1, rec.count())
}

func TestNavigationCancelsPreviousInit(t *testing.T) {
	r, _, _, _ := newRouter(t, true)
	started := make(chan struct{})
	var cancelled bool
	r.Register(PageForms, pageFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled = true
		return ctx.Err()
	}))

	ctx := context.Background()
	r.Navigate(ctx, "/forms")
	<-started
	r.Navigate(ctx, "/settings")
	r.Wait()

	assert.True(t, cancelled)
}

func TestStaleShowIsDropped(t *testing.T) {
	r, _, rec, _ := newRouter(t, true)
	pageCtx := make(chan context.Context, 1)
	release := make(chan struct{})
	shown := make(chan bool, 1)
	r.Register(PageForms, pageFunc(func(ctx context.Context) error {
		pageCtx <- ctx
		<-release
		shown <- r.Show(ctx, "stale forms")
		return nil
	}))

	ctx := context.Background()
	r.Navigate(ctx, "/forms")
	<-pageCtx
	r.Navigate(ctx, "/recipients")
	close(release)
	r.Wait()

	assert.False(t, <-shown)
	assert.Equal(t, "Recipients", rec.last().Title)
}

func TestInitErrors(t *testing.T) {
	t.Run("notifies", func(t *testing.T) {
		r, gate, rec, _ := newRouter(t, true)
		r.Register(PageDashboard, pageFunc(func(context.Context) error {
			return errors.New("loading dashboard: backend unavailable")
		}))
		r.Navigate(context.Background(), "/")
		r.Navigate(context.Background(), "/")
		r.Wait()
		assert.Contains(t, rec.messages, "error: loading dashboard: backend unavailable")
		assert.Zero(t, gate.logouts)
	})

	t.Run("unauthorized logs out", func(t *testing.T) {
		r, gate, _, _ := newRouter(t, true)
		r.Register(PageForms, pageFunc(func(context.Context) error {
			return &api.Error{Status: 401, Message: "Token has expired"}
		}))
		r.Navigate(context.Background(), "/forms")
		r.Wait()
		assert.Equal(t, 1, gate.logouts)
		assert.Equal(t, "/login", r.Path())
	})
}

func TestFollowLink(t *testing.T) {
	r, _, _, _ := newRouter(t, true)
	ctx := context.Background()

	tests := []struct {
		href string
		ok   bool
		path string
	}{
		{"/forms", true, "/forms"},
		{"http://localhost:5000/recipients?sort=name", true, "/recipients?sort=name"},
		{"https://localhost:5000/tracking", false, ""},
		{"https://example.com/forms", false, ""},
		{"//example.com/forms", false, ""},
		{"forms", false, ""},
		{"mailto:a@x.com", false, ""},
		{"#top", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			before := r.Path()
			assert.Equal(t, tt.ok, r.FollowLink(ctx, tt.href))
			if tt.ok {
				assert.Equal(t, tt.path, r.Path())
			} else {
				assert.Equal(t, before, r.Path())
			}
		})
	}
	r.Wait()
}
