package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/harrylevesque/emailforms/internal/auth"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

// inlineError formats an error the way the sign-in and registration forms
// show it: one line per invalid field, or the backend's message.
func inlineError(err error, fallback string) string {
	var ve *auth.ValidationError
	if errors.As(err, &ve) {
		var b strings.Builder
		for _, field := range sortedKeys(ve.Fields) {
			b.WriteString("\n  " + ve.Fields[field])
		}
		return b.String() + "\n"
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return "\n  " + msg + "\n"
}

type Login struct {
	d *Deps
}

func NewLogin(d *Deps) *Login { return &Login{d: d} }

// Init has nothing to load; the router has already drawn the form.
func (p *Login) Init(context.Context) error { return nil }

func (p *Login) Commands() []Command {
	return []Command{
		{Name: "login", Usage: "login [email]", Help: "sign in (the password is prompted)", Run: p.login},
		{Name: "register", Usage: "register", Help: "create an account", Run: func(ctx context.Context, _ []string) error {
			p.d.Navigator.Navigate(ctx, "/register")
			return nil
		}},
	}
}

func (p *Login) login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = p.d.Prompter.Prompt("Email"); err != nil {
			return err
		}
	}
	password, err := p.d.Prompter.Password("Password")
	if err != nil {
		return err
	}

	if err := p.d.Gate.Login(ctx, email, password); err != nil {
		return p.d.show(ctx, "login", templates.Data{
			"error": inlineError(err, "Login failed. Please check your credentials."),
		})
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Login successful!")
	p.d.Navigator.Navigate(ctx, "/")
	return nil
}
