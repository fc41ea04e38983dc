package pages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harrylevesque/emailforms/internal/auth"
	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

var errImportType = errors.New("only CSV and Excel files are allowed")

type recipientForm struct {
	Name  string `form:"name" validate:"required"`
	Email string `form:"email" validate:"required,email"`
}

type Recipients struct {
	d *Deps
}

func NewRecipients(d *Deps) *Recipients { return &Recipients{d: d} }

func (p *Recipients) Init(ctx context.Context) error {
	recipients, err := p.d.API.ListRecipients(ctx)
	if err != nil {
		return fmt.Errorf("error loading recipients: %w", err)
	}
	if !p.d.Store.SetStateContext(ctx, store.WithRecipients(recipients)) {
		return ctx.Err()
	}
	return p.render(ctx)
}

func (p *Recipients) render(ctx context.Context) error {
	recipients := p.d.Store.GetState().Recipients
	items := make([]templates.Data, 0, len(recipients))
	for _, r := range recipients {
		items = append(items, templates.Data{
			"id":            r.ID,
			"name":          r.Name,
			"email":         r.Email,
			"formsSent":     strconv.Itoa(r.FormsSent),
			"formsReturned": strconv.Itoa(r.FormsReturned),
		})
	}
	rows, err := p.d.rows("recipient-row", items, "No recipients found. Add a recipient to get started.")
	if err != nil {
		return err
	}
	return p.d.show(ctx, "recipients", templates.Data{
		"count": "(" + strconv.Itoa(len(recipients)) + ")",
		"rows":  rows,
	})
}

func (p *Recipients) Commands() []Command {
	return []Command{
		{Name: "refresh", Usage: "refresh", Help: "reload the list", Run: func(ctx context.Context, _ []string) error {
			return p.Init(ctx)
		}},
		{Name: "add", Usage: "add <name> <email>", Help: "add a recipient", Run: p.add},
		{Name: "edit", Usage: "edit <id> <name> <email>", Help: "update a recipient", Run: p.edit},
		{Name: "delete", Usage: "delete <id>", Help: "delete a recipient", Run: p.delete},
		{Name: "import", Usage: "import <file.csv>", Help: "import name,email rows", Run: p.importFile},
		{Name: "send", Usage: "send <id> <form-id>", Help: "email a form to one recipient", Run: p.send},
	}
}

// parseRecipient accepts "<name...> <email>" so names may contain spaces.
func parseRecipient(args []string) (models.SendRecipient, error) {
	var f recipientForm
	if n := len(args); n > 0 {
		f.Email = args[n-1]
		f.Name = strings.Join(args[:n-1], " ")
	}
	if err := auth.Validate(f); err != nil {
		return models.SendRecipient{}, err
	}
	return models.SendRecipient{Name: f.Name, Email: f.Email}, nil
}

func (p *Recipients) add(ctx context.Context, args []string) error {
	r, err := parseRecipient(args)
	if err != nil {
		return err
	}
	if _, err := p.d.API.CreateRecipient(ctx, r); err != nil {
		return fmt.Errorf("error adding recipient: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Recipient added successfully!")
	return p.Init(ctx)
}

func (p *Recipients) edit(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usageError("edit <id> <name> <email>")
	}
	r, err := parseRecipient(args[1:])
	if err != nil {
		return err
	}
	if _, err := p.d.API.UpdateRecipient(ctx, args[0], r); err != nil {
		return fmt.Errorf("error updating recipient: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Recipient updated successfully!")
	return p.Init(ctx)
}

func (p *Recipients) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <id>")
	}
	ok, err := p.d.Prompter.Confirm("Delete this recipient? This action cannot be undone")
	if err != nil || !ok {
		return err
	}
	if err := p.d.API.DeleteRecipient(ctx, args[0]); err != nil {
		return fmt.Errorf("error deleting recipient: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Recipient deleted successfully!")
	return p.Init(ctx)
}

func (p *Recipients) importFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("import <file.csv>")
	}
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".csv", ".xls", ".xlsx":
	default:
		return errImportType
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := p.d.API.ImportRecipients(ctx, args[0], f)
	if err != nil {
		return fmt.Errorf("error importing recipients: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("%d recipients imported successfully!", res.Imported))
	return p.Init(ctx)
}

func (p *Recipients) send(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("send <id> <form-id>")
	}
	r, err := p.d.API.GetRecipient(ctx, args[0])
	if err != nil {
		return fmt.Errorf("error loading recipient: %w", err)
	}
	settings, err := p.d.API.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("error loading data: %w", err)
	}
	req, err := buildSendRequest([]models.Recipient{*r}, []string{r.ID}, settings.EmailTemplates)
	if err != nil {
		return err
	}
	results, err := p.d.API.SendForm(ctx, args[1], req)
	if err != nil {
		return fmt.Errorf("error sending form: %w", err)
	}
	if len(results) == 1 && results[0].Status != "sent" {
		p.d.Notifier.Notify(ui.LevelError, results[0].Message)
		return nil
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("Form sent to %s successfully!", r.Name))
	return p.Init(ctx)
}
