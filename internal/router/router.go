// Package router resolves paths to pages, enforces the auth requirement of
// each route and runs page initialisers.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/api"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

// Gate is the auth gate as seen by the router.
type Gate interface {
	IsAuthenticated() bool
	Logout(ctx context.Context)
}

// Page loads the data a page shows. Init runs in its own goroutine; ctx is
// cancelled as soon as the user navigates elsewhere.
type Page interface {
	Init(ctx context.Context) error
}

type Options struct {
	Table     Table
	Gate      Gate
	Store     *store.Store
	Templates *templates.Set
	Renderer  ui.Renderer
	Notifier  ui.Notifier
	// Origin is scheme://host of the application; links to any other
	// origin are not followed.
	Origin string
	Logger *logging.Logger
}

type Router struct {
	table    Table
	history  *History
	gate     Gate
	tmpl     *templates.Set
	renderer ui.Renderer
	notifier ui.Notifier
	origin   *url.URL
	log      *logging.Logger

	mu      sync.Mutex
	pages   map[string]Page
	current Route
	cancel  context.CancelFunc
	inits   sync.WaitGroup
	// user is the header profile, kept current by a Store subscription.
	user        *models.User
	shown       ui.Frame
	unsubscribe func()
}

func New(opts Options) (*Router, error) {
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	var origin *url.URL
	if opts.Origin != "" {
		u, err := url.Parse(opts.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid origin %q", opts.Origin)
		}
		origin = u
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	r := &Router{
		table:       opts.Table,
		history:     NewHistory(DefaultPath),
		gate:        opts.Gate,
		tmpl:        opts.Templates,
		renderer:    opts.Renderer,
		notifier:    opts.Notifier,
		origin:      origin,
		log:         log.Named("router"),
		pages:       make(map[string]Page),
		unsubscribe: func() {},
	}
	if opts.Store != nil {
		r.user = opts.Store.GetState().User
		r.unsubscribe = opts.Store.Subscribe(r.onState)
	}
	return r, nil
}

// Close stops following the Store.
func (r *Router) Close() {
	r.unsubscribe()
}

// onState tracks the signed-in user and redraws the header of a frame that
// is showing a different user.
func (r *Router) onState(st store.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sameUser(r.user, st.User) {
		return
	}
	r.user = st.User
	if r.shown.Chrome && r.gate.IsAuthenticated() {
		r.draw(r.frame(r.current, r.shown.Content))
	}
}

func sameUser(a, b *models.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Register binds a page implementation to a page identifier.
func (r *Router) Register(page string, p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page] = p
}

func (r *Router) Table() Table { return r.table }

func (r *Router) History() *History { return r.history }

// Path is the current history entry.
func (r *Router) Path() string { return r.history.Current() }

// Navigate moves to path. Navigating to the current path re-renders it
// without adding a history entry.
func (r *Router) Navigate(ctx context.Context, path string) {
	if path != r.history.Current() {
		r.history.Push(path)
	}
	r.LoadCurrentRoute(ctx)
}

// Back and Forward move through history and reload without pushing.
func (r *Router) Back(ctx context.Context) bool {
	if !r.history.Back() {
		return false
	}
	r.LoadCurrentRoute(ctx)
	return true
}

func (r *Router) Forward(ctx context.Context) bool {
	if !r.history.Forward() {
		return false
	}
	r.LoadCurrentRoute(ctx)
	return true
}

// CurrentRoute resolves the current path. Unknown paths resolve to the
// default route; ok is false only when the table has no default route.
func (r *Router) CurrentRoute() (route Route, ok bool) {
	path := stripQuery(r.history.Current())
	if route, ok := r.table[path]; ok {
		return route, true
	}
	if path != DefaultPath {
		if route, ok := r.table[DefaultPath]; ok {
			return route, true
		}
	}
	return Route{}, false
}

// LoadCurrentRoute renders the current route, or redirects to the login
// route when the route needs a session and there is none.
func (r *Router) LoadCurrentRoute(ctx context.Context) {
	route, ok := r.CurrentRoute()
	if !ok {
		r.log.Error("Route not found", zap.String("path", r.history.Current()))
		return
	}
	if route.RequiresAuth && !r.gate.IsAuthenticated() {
		r.log.Debug("Redirecting to login", zap.String("from", route.Path))
		r.Navigate(ctx, r.table.LoginPath())
		return
	}
	r.loadPage(ctx, route)
}

func (r *Router) loadPage(ctx context.Context, route Route) {
	content, err := r.tmpl.Render(route.Page, nil)
	if err != nil {
		r.log.Error("Error loading page", zap.String("page", route.Page), zap.Error(err))
		r.notifier.Notify(ui.LevelError, "Error loading page: "+err.Error())
		return
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	pageCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.current = route
	page := r.pages[route.Page]
	r.draw(r.frame(route, content))
	if page != nil {
		r.inits.Add(1)
	}
	r.mu.Unlock()

	if page == nil {
		cancel()
		return
	}
	go func() {
		defer r.inits.Done()
		defer cancel()
		err := page.Init(pageCtx)
		r.handleInitError(ctx, pageCtx, route, err)
	}()
}

func (r *Router) handleInitError(ctx, pageCtx context.Context, route Route, err error) {
	switch {
	case err == nil:
		return
	case pageCtx.Err() != nil && errors.Is(err, context.Canceled):
		return
	case errors.Is(err, api.ErrUnauthorized):
		r.log.Warn("Session rejected by backend", zap.String("page", route.Page), zap.Error(err))
		r.notifier.Notify(ui.LevelWarning, "Your session has expired. Please sign in again.")
		r.gate.Logout(ctx)
	default:
		r.log.Error("Page initialisation failed", zap.String("page", route.Page), zap.Error(err))
		r.notifier.Notify(ui.LevelError, err.Error())
	}
}

// Wait blocks until every started page initialiser has returned.
func (r *Router) Wait() {
	r.inits.Wait()
}

// Show re-renders the current route with content, unless ctx belongs to a
// page the user has already left. It reports whether anything was drawn.
func (r *Router) Show(ctx context.Context, content string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	r.draw(r.frame(r.current, content))
	return true
}

// draw renders f and remembers it. Callers hold r.mu.
func (r *Router) draw(f ui.Frame) {
	r.shown = f
	r.renderer.RenderFrame(f)
}

func (r *Router) frame(route Route, content string) ui.Frame {
	f := ui.Frame{
		Title:   route.Title,
		Path:    route.Path,
		Content: content,
		Chrome:  r.gate.IsAuthenticated(),
	}
	if !f.Chrome {
		return f
	}
	if u := r.user; u != nil {
		f.UserName, f.UserEmail = u.Name, u.Email
	}
	for _, nav := range r.table.Nav() {
		f.Nav = append(f.Nav, ui.NavLink{Path: nav.Path, Title: nav.Title, Active: nav.Path == route.Path})
	}
	return f
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}
