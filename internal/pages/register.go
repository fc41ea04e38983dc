package pages

import (
	"context"
	"sort"

	"github.com/harrylevesque/emailforms/internal/auth"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}

type Register struct {
	d *Deps
}

func NewRegister(d *Deps) *Register { return &Register{d: d} }

func (p *Register) Init(context.Context) error { return nil }

func (p *Register) Commands() []Command {
	return []Command{
		{Name: "register", Usage: "register", Help: "fill in the registration form", Run: p.register},
		{Name: "login", Usage: "login", Help: "back to sign in", Run: func(ctx context.Context, _ []string) error {
			p.d.Navigator.Navigate(ctx, "/login")
			return nil
		}},
	}
}

// collect walks the three registration steps and returns the filled form.
func (p *Register) collect() (auth.RegisterForm, error) {
	var (
		f   auth.RegisterForm
		err error
	)
	pr := p.d.Prompter
	steps := []struct {
		dst  *string
		ask  func(string) (string, error)
		name string
	}{
		{&f.Email, pr.Prompt, "Email"},
		{&f.Password, pr.Password, "Password"},
		{&f.ConfirmPassword, pr.Password, "Confirm password"},
		{&f.FirstName, pr.Prompt, "First name"},
		{&f.LastName, pr.Prompt, "Last name"},
		{&f.Phone, pr.Prompt, "Phone (optional)"},
		{&f.Company, pr.Prompt, "Company (optional)"},
	}
	for _, s := range steps {
		if *s.dst, err = s.ask(s.name); err != nil {
			return f, err
		}
	}
	f.AgreeToTerms, err = pr.Confirm("I agree to the terms and conditions")
	return f, err
}

func (p *Register) register(ctx context.Context, _ []string) error {
	form, err := p.collect()
	if err != nil {
		return err
	}
	review, err := p.d.Templates.Render("register-review", templates.Data{
		"email":   form.Email,
		"name":    form.FirstName + " " + form.LastName,
		"phone":   orNotProvided(form.Phone),
		"company": orNotProvided(form.Company),
	})
	if err != nil {
		return err
	}
	p.d.Screen.Show(ctx, review)

	if err := p.d.Gate.Register(ctx, form); err != nil {
		return p.d.show(ctx, "register", templates.Data{
			"error": inlineError(err, "Registration failed. Please try again."),
		})
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Registration successful! Please log in.")
	p.d.Navigator.Navigate(ctx, "/login")
	return nil
}
