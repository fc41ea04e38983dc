package pages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

const (
	defaultSubject = "Please complete the attached form"
	defaultBody    = "Hello {Name},\n\nPlease complete the attached form and return it at your earliest convenience.\n\nThank you."
)

var errNoRecipients = errors.New("please select at least one recipient")

type Forms struct {
	d *Deps
}

func NewForms(d *Deps) *Forms { return &Forms{d: d} }

func (p *Forms) Init(ctx context.Context) error {
	forms, err := p.d.API.ListForms(ctx)
	if err != nil {
		return fmt.Errorf("error loading forms: %w", err)
	}
	if !p.d.Store.SetStateContext(ctx, store.WithForms(forms)) {
		return ctx.Err()
	}
	return p.render(ctx)
}

func (p *Forms) render(ctx context.Context) error {
	forms := p.d.Store.GetState().Forms
	items := make([]templates.Data, 0, len(forms))
	for _, f := range forms {
		items = append(items, templates.Data{
			"id":      f.ID,
			"name":    f.Name,
			"size":    ui.FormatFileSize(f.Size),
			"created": ui.FormatDate(f.Created),
		})
	}
	rows, err := p.d.rows("form-row", items, "No forms found. Upload a form to get started.")
	if err != nil {
		return err
	}
	return p.d.show(ctx, "forms", templates.Data{
		"count": "(" + strconv.Itoa(len(forms)) + ")",
		"rows":  rows,
	})
}

func (p *Forms) Commands() []Command {
	return []Command{
		{Name: "refresh", Usage: "refresh", Help: "reload the list", Run: func(ctx context.Context, _ []string) error {
			return p.Init(ctx)
		}},
		{Name: "upload", Usage: "upload <file.pdf>", Help: "upload a PDF form", Run: p.upload},
		{Name: "download", Usage: "download <form-id> <dest>", Help: "save a form to disk", Run: p.download},
		{Name: "rename", Usage: "rename <form-id> <name>", Help: "rename a form", Run: p.rename},
		{Name: "send", Usage: "send <form-id> <recipient-id>...", Help: "email a form", Run: p.send},
		{Name: "delete", Usage: "delete <form-id>", Help: "delete a form", Run: p.delete},
	}
}

func (p *Forms) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("upload <file.pdf>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	form, err := p.d.API.UploadForm(ctx, args[0], f)
	if err != nil {
		return fmt.Errorf("error uploading form: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("Form %s uploaded successfully!", form.Name))
	return p.Init(ctx)
}

func (p *Forms) download(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("download <form-id> <dest>")
	}
	data, err := p.d.API.DownloadForm(ctx, args[0])
	if err != nil {
		return fmt.Errorf("error downloading form: %w", err)
	}
	if err := os.WriteFile(args[1], data, 0644); err != nil {
		return err
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Form saved to "+args[1])
	return nil
}

func (p *Forms) rename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("rename <form-id> <name>")
	}
	if _, err := p.d.API.UpdateForm(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("error updating form: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Form updated successfully!")
	return p.Init(ctx)
}

// send loads recipients and email defaults concurrently, then sends the
// form to the selected recipients.
func (p *Forms) send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("send <form-id> <recipient-id>...")
	}
	formID, ids := args[0], args[1:]

	var (
		recipients []models.Recipient
		settings   *models.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recipients, err = p.d.API.ListRecipients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = p.d.API.GetSettings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("error loading recipients: %w", err)
	}

	req, err := buildSendRequest(recipients, ids, settings.EmailTemplates)
	if err != nil {
		return err
	}
	results, err := p.d.API.SendForm(ctx, formID, req)
	if err != nil {
		return fmt.Errorf("error sending form: %w", err)
	}
	return p.reportSend(ctx, results)
}

func buildSendRequest(all []models.Recipient, ids []string, tmpl models.EmailTemplates) (models.SendRequest, error) {
	byID := make(map[string]models.Recipient, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}
	req := models.SendRequest{Subject: tmpl.DefaultSubject, Message: tmpl.DefaultBody}
	if req.Subject == "" {
		req.Subject = defaultSubject
	}
	if req.Message == "" {
		req.Message = defaultBody
	}
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return models.SendRequest{}, fmt.Errorf("recipient %s not found", id)
		}
		req.Recipients = append(req.Recipients, models.SendRecipient{Email: r.Email, Name: r.Name})
	}
	if len(req.Recipients) == 0 {
		return models.SendRequest{}, errNoRecipients
	}
	return req, nil
}

func (p *Forms) reportSend(ctx context.Context, results []models.SendResult) error {
	items := make([]templates.Data, 0, len(results))
	var failed int
	for _, r := range results {
		if r.Status != "sent" {
			failed++
		}
		items = append(items, templates.Data{
			"recipient": r.Recipient.Email,
			"status":    p.d.badge(r.Status),
			"message":   r.Message,
		})
	}
	out, err := p.d.Templates.RenderList("send-result-row", items)
	if err != nil {
		return err
	}
	p.d.Screen.Show(ctx, out)

	sent := len(results) - failed
	if failed > 0 {
		p.d.Notifier.Notify(ui.LevelWarning, fmt.Sprintf("Form sent to %d recipient(s); %d failed.", sent, failed))
		return nil
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("Form sent to %d recipient(s) successfully!", sent))
	return nil
}

func (p *Forms) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("delete <form-id>")
	}
	ok, err := p.d.Prompter.Confirm("Delete this form? This action cannot be undone")
	if err != nil || !ok {
		return err
	}
	if err := p.d.API.DeleteForm(ctx, args[0]); err != nil {
		return fmt.Errorf("error deleting form: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, "Form deleted successfully!")
	return p.Init(ctx)
}
