package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

type Settings struct {
	d *Deps
}

func NewSettings(d *Deps) *Settings { return &Settings{d: d} }

func (p *Settings) Init(ctx context.Context) error {
	s, err := p.d.API.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("error loading settings: %w", err)
	}
	if !p.d.Store.SetStateContext(ctx, store.WithSettings(*s)) {
		return ctx.Err()
	}
	return p.render(ctx)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not set"
}

func (p *Settings) render(ctx context.Context) error {
	s := p.d.Store.GetState().Settings
	site := s.Integration.SharepointSite
	if site == "" {
		site = "not set"
	}
	return p.d.show(ctx, "settings", templates.Data{
		"subject":        s.EmailTemplates.DefaultSubject,
		"body":           strings.ReplaceAll(s.EmailTemplates.DefaultBody, "\n", "\n              "),
		"signature":      s.EmailTemplates.Signature,
		"clientId":       configured(s.Integration.ClientID),
		"clientSecret":   configured(s.Integration.ClientSecret),
		"sharepointSite": site,
	})
}

func (p *Settings) Commands() []Command {
	return []Command{
		{Name: "refresh", Usage: "refresh", Help: "reload settings", Run: func(ctx context.Context, _ []string) error {
			return p.Init(ctx)
		}},
		{Name: "set", Usage: "set <field> <value...>", Help: "subject, body, signature, client-id, client-secret or site", Run: p.set},
		{Name: "test", Usage: "test", Help: "test the SharePoint integration", Run: p.test},
		{Name: "backup", Usage: "backup", Help: "create a backup", Run: p.backup},
	}
}

// settingsUpdate builds the partial update for one field. Email template
// updates carry the current values of the other template fields.
func settingsUpdate(current models.Settings, field, value string) (models.SettingsUpdate, error) {
	tmpl := current.EmailTemplates
	switch field {
	case "subject":
		tmpl.DefaultSubject = value
	case "body":
		tmpl.DefaultBody = strings.ReplaceAll(value, `\n`, "\n")
	case "signature":
		tmpl.Signature = strings.ReplaceAll(value, `\n`, "\n")
	case "client-id":
		return models.SettingsUpdate{Integration: &models.IntegrationUpdate{ClientID: value}}, nil
	case "client-secret":
		return models.SettingsUpdate{Integration: &models.IntegrationUpdate{ClientSecret: value}}, nil
	case "site":
		return models.SettingsUpdate{Integration: &models.IntegrationUpdate{SharepointSite: value}}, nil
	default:
		return models.SettingsUpdate{}, fmt.Errorf("unknown setting %q", field)
	}
	return models.SettingsUpdate{EmailTemplates: &tmpl}, nil
}

func (p *Settings) set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("set <field> <value...>")
	}
	upd, err := settingsUpdate(p.d.Store.GetState().Settings, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	s, err := p.d.API.UpdateSettings(ctx, upd)
	if err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	p.d.Store.SetState(store.WithSettings(*s))
	p.d.Notifier.Notify(ui.LevelSuccess, "Settings saved successfully!")
	return p.render(ctx)
}

func (p *Settings) test(ctx context.Context, _ []string) error {
	res, err := p.d.API.TestIntegration(ctx)
	if err != nil {
		return fmt.Errorf("error testing integration: %w", err)
	}
	if res.Success {
		p.d.Notifier.Notify(ui.LevelSuccess, res.Message)
	} else {
		p.d.Notifier.Notify(ui.LevelError, res.Message)
	}
	return nil
}

func (p *Settings) backup(ctx context.Context, _ []string) error {
	res, err := p.d.API.Backup(ctx)
	if err != nil {
		return fmt.Errorf("error creating backup: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("%s: %s", res.Message, res.File))
	return nil
}
