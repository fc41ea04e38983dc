// Package pages implements the admin client's screens. Each page loads its
// data in Init and exposes the actions a user can run while it is showing.
package pages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harrylevesque/emailforms/internal/api"
	"github.com/harrylevesque/emailforms/internal/auth"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/router"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

// Screen redraws the current route. Show returns false and draws nothing
// when ctx belongs to a page the user has left.
type Screen interface {
	Show(ctx context.Context, content string) bool
}

type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// Prompter reads interactive input.
type Prompter interface {
	Prompt(label string) (string, error)
	Password(label string) (string, error)
	Confirm(label string) (bool, error)
}

// Command is one action available on a page.
type Command struct {
	Name  string
	Usage string
	Help  string
	Run   func(ctx context.Context, args []string) error
}

// Page is a screen with an initialiser and a set of commands.
type Page interface {
	Init(ctx context.Context) error
	Commands() []Command
}

// Deps is everything a page needs, passed in at construction.
type Deps struct {
	API       *api.Client
	Store     *store.Store
	Gate      *auth.Gate
	Screen    Screen
	Navigator Navigator
	Notifier  ui.Notifier
	Prompter  Prompter
	Templates *templates.Set
	// Badge styles a status label; nil leaves labels plain.
	Badge  func(status string) string
	Logger *logging.Logger
}

func (d *Deps) badge(status string) string {
	if d.Badge == nil {
		return status
	}
	return d.Badge(status)
}

func (d *Deps) log() *logging.Logger {
	if d.Logger == nil {
		return logging.Nop()
	}
	return d.Logger
}

// rows renders one row template per item, or the empty message.
func (d *Deps) rows(name string, items []templates.Data, empty string) (string, error) {
	if len(items) == 0 {
		return d.Templates.Render("empty-row", templates.Data{"message": empty})
	}
	return d.Templates.RenderList(name, items)
}

// show renders a page template and draws it.
func (d *Deps) show(ctx context.Context, name string, data templates.Data) error {
	out, err := d.Templates.Render(name, data)
	if err != nil {
		return err
	}
	d.Screen.Show(ctx, out)
	return nil
}

// New builds every page keyed by page identifier.
func New(d *Deps) map[string]Page {
	return map[string]Page{
		router.PageDashboard:  NewDashboard(d),
		router.PageLogin:      NewLogin(d),
		router.PageRegister:   NewRegister(d),
		router.PageForms:      NewForms(d),
		router.PageRecipients: NewRecipients(d),
		router.PageTracking:   NewTracking(d),
		router.PageExtraction: NewExtraction(d),
		router.PageSettings:   NewSettings(d),
	}
}

// Find returns the named command of p.
func Find(p Page, name string) (Command, bool) {
	for _, c := range p.Commands() {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Usage lists p's commands, one per line.
func Usage(p Page) string {
	cmds := p.Commands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	var b strings.Builder
	for _, c := range cmds {
		fmt.Fprintf(&b, "  %-38s %s\n", c.Usage, c.Help)
	}
	return b.String()
}

func usageError(c string) error {
	return fmt.Errorf("usage: %s", c)
}

// keyValues parses "key=value" arguments.
func keyValues(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		out[k] = v
	}
	return out, nil
}
