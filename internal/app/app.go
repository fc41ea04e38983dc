// Package app wires the admin client together: configuration, durable
// storage, the REST client, the Store, the auth gate, the router and the
// pages. It also interprets the command lines typed into the shell.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/api"
	"github.com/harrylevesque/emailforms/internal/auth"
	"github.com/harrylevesque/emailforms/internal/config"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/pages"
	"github.com/harrylevesque/emailforms/internal/router"
	"github.com/harrylevesque/emailforms/internal/storage"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

// ErrQuit is returned by Exec when the user asks to leave the shell.
var ErrQuit = errors.New("quit")

type Options struct {
	Out      io.Writer
	Prompter pages.Prompter
	// HTTPClient overrides the REST client's transport (tests).
	HTTPClient *http.Client
	// Logger overrides the logger built from the configuration.
	Logger *logging.Logger
}

type App struct {
	Config   *config.Config
	Log      *logging.Logger
	KV       storage.KV
	API      *api.Client
	Store    *store.Store
	Gate     *auth.Gate
	Router   *router.Router
	Terminal *ui.Terminal
	Pages    map[string]pages.Page

	ownsLog bool
}

// New builds the client from cfg. The caller must Close the App.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	a := &App{Config: cfg, Log: opts.Logger}
	if a.Log == nil {
		l, err := logging.NewLogger(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		a.Log, a.ownsLog = l, true
	}

	key, err := cfg.StorageKey()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.KV, err = storage.Open(cfg.Storage.Backend, cfg.Storage.Path, key, a.Log.Named("storage"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	apiOpts := []api.Option{api.WithLogger(a.Log.Named("api"))}
	if opts.HTTPClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(opts.HTTPClient))
	}
	a.API = api.New(cfg.APIURL, apiOpts...)
	a.Store = store.New(a.KV, a.Log.Named("store"))
	a.Gate = auth.New(a.API, a.KV, a.Store, a.Log.Named("auth"))
	a.API.UseTokens(a.Gate)

	tmpl, err := templates.Load()
	if err != nil {
		a.Close()
		return nil, err
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	a.Terminal = ui.NewTerminal(out, tmpl)

	a.Router, err = router.New(router.Options{
		Table:     router.DefaultTable(),
		Gate:      a.Gate,
		Store:     a.Store,
		Templates: tmpl,
		Renderer:  a.Terminal,
		Notifier:  a.Terminal,
		Origin:    cfg.Origin,
		Logger:    a.Log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Gate.SetNavigator(a.Router)

	a.Pages = pages.New(&pages.Deps{
		API:       a.API,
		Store:     a.Store,
		Gate:      a.Gate,
		Screen:    a.Router,
		Navigator: a.Router,
		Notifier:  a.Terminal,
		Prompter:  opts.Prompter,
		Templates: tmpl,
		Badge:     a.Terminal.Badge,
		Logger:    a.Log.Named("pages"),
	})
	for name, p := range a.Pages {
		a.Router.Register(name, p)
	}
	return a, nil
}

// Start verifies any saved session and shows path. A signed-in user asking
// for the login or register page lands on the dashboard instead; routes
// that need a session redirect to login.
func (a *App) Start(ctx context.Context, path string) {
	if path == "" {
		path = router.DefaultPath
	}
	authed := a.Gate.CheckAuth(ctx)
	if route, ok := a.Router.Table()[path]; ok && authed && !route.RequiresAuth {
		path = router.DefaultPath
	}
	a.Log.Info("Starting", zap.String("path", path), zap.Bool("authenticated", authed))
	a.Router.Navigate(ctx, path)
	a.Router.Wait()
}

// CurrentPage returns the page showing now.
func (a *App) CurrentPage() (router.Route, pages.Page, bool) {
	route, ok := a.Router.CurrentRoute()
	if !ok {
		return router.Route{}, nil, false
	}
	p, ok := a.Pages[route.Page]
	return route, p, ok
}

// Exec runs one shell line: a global command or a command of the current
// page. It returns once any navigation it caused has finished loading.
func (a *App) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	defer a.Router.Wait()

	switch name {
	case "quit", "exit":
		return ErrQuit
	case "help":
		a.Terminal.Notify(ui.LevelInfo, "Commands:\n"+a.Help())
		return nil
	case "go":
		if len(args) != 1 {
			return errors.New("usage: go <path>")
		}
		if !a.Router.FollowLink(ctx, args[0]) {
			return fmt.Errorf("cannot open %s", args[0])
		}
		return nil
	case "back":
		if !a.Router.Back(ctx) {
			return errors.New("no previous page")
		}
		return nil
	case "forward":
		if !a.Router.Forward(ctx) {
			return errors.New("no next page")
		}
		return nil
	case "logout":
		a.Gate.Logout(ctx)
		return nil
	}

	route, page, ok := a.CurrentPage()
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	cmd, ok := pages.Find(page, name)
	if !ok {
		return fmt.Errorf("unknown command %q on %s, type help", name, route.Title)
	}
	err := cmd.Run(ctx, args)
	if errors.Is(err, api.ErrUnauthorized) {
		a.Log.Warn("Session rejected by backend", zap.String("command", name), zap.Error(err))
		a.Terminal.Notify(ui.LevelWarning, "Your session has expired. Please sign in again.")
		a.Gate.Logout(ctx)
		return nil
	}
	return err
}

// Help lists the global commands, the pages and the current page's commands.
func (a *App) Help() string {
	var b strings.Builder
	for _, g := range [][2]string{
		{"go <path>", "open a page, e.g. go /forms"},
		{"back", "previous page"},
		{"forward", "next page"},
		{"logout", "sign out"},
		{"quit", "leave the shell"},
	} {
		fmt.Fprintf(&b, "  %-38s %s\n", g[0], g[1])
	}
	if a.Gate.IsAuthenticated() {
		nav := a.Router.Table().Nav()
		paths := make([]string, 0, len(nav))
		for _, r := range nav {
			paths = append(paths, r.Path)
		}
		sort.Strings(paths)
		fmt.Fprintf(&b, "\nPages: %s\n", strings.Join(paths, " "))
	}
	if route, page, ok := a.CurrentPage(); ok {
		fmt.Fprintf(&b, "\n%s:\n%s", route.Title, pages.Usage(page))
	}
	return b.String()
}

// Close releases storage and flushes the log.
func (a *App) Close() {
	if a.Router != nil {
		a.Router.Close()
	}
	if c, ok := a.KV.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.Log.Warn("Closing storage", zap.Error(err))
		}
	}
	if a.ownsLog {
		a.Log.Close()
	}
}
