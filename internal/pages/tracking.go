package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

// trackingFilter selects tracking records; zero values match everything.
type trackingFilter struct {
	FormID   string
	Returned *bool
}

func parseTrackingFilter(args []string) (trackingFilter, error) {
	kv, err := keyValues(args)
	if err != nil {
		return trackingFilter{}, err
	}
	var f trackingFilter
	for k, v := range kv {
		switch k {
		case "form":
			f.FormID = v
		case "returned":
			b, err := parseYesNo(v)
			if err != nil {
				return trackingFilter{}, err
			}
			f.Returned = &b
		default:
			return trackingFilter{}, fmt.Errorf("unknown filter %q", k)
		}
	}
	return f, nil
}

func parseYesNo(v string) (bool, error) {
	switch v {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", v)
}

func (f trackingFilter) match(r models.TrackingRecord) bool {
	if f.FormID != "" && r.FormID != f.FormID {
		return false
	}
	if f.Returned != nil && r.Returned != *f.Returned {
		return false
	}
	return true
}

// trackingStatus is the display status of a record.
func trackingStatus(r models.TrackingRecord) string {
	switch {
	case r.Processed:
		return "processed"
	case r.Returned:
		return "returned"
	default:
		return "not returned"
	}
}

type Tracking struct {
	d *Deps
}

func NewTracking(d *Deps) *Tracking { return &Tracking{d: d} }

func (p *Tracking) Init(ctx context.Context) error {
	records, err := p.d.API.ListTracking(ctx)
	if err != nil {
		return fmt.Errorf("error loading tracking data: %w", err)
	}
	if !p.d.Store.SetStateContext(ctx, store.WithTracking(records)) {
		return ctx.Err()
	}
	return p.render(ctx, trackingFilter{})
}

func (p *Tracking) render(ctx context.Context, f trackingFilter) error {
	var items []templates.Data
	for _, r := range p.d.Store.GetState().Tracking {
		if !f.match(r) {
			continue
		}
		items = append(items, templates.Data{
			"id":             r.ID,
			"formName":       r.FormName,
			"recipientName":  r.RecipientName,
			"recipientEmail": r.RecipientEmail,
			"dateSent":       ui.FormatDate(r.DateSent),
			"status":         p.d.badge(trackingStatus(r)),
		})
	}
	rows, err := p.d.rows("tracking-row", items, "No tracking records found.")
	if err != nil {
		return err
	}
	return p.d.show(ctx, "tracking", templates.Data{
		"count": "(" + strconv.Itoa(len(items)) + ")",
		"rows":  rows,
	})
}

func (p *Tracking) Commands() []Command {
	return []Command{
		{Name: "refresh", Usage: "refresh", Help: "reload the list", Run: func(ctx context.Context, _ []string) error {
			return p.Init(ctx)
		}},
		{Name: "check", Usage: "check", Help: "check the mailbox for returned forms", Run: p.check},
		{Name: "filter", Usage: "filter [form=<id>] [returned=yes|no]", Help: "filter the list", Run: p.filter},
		{Name: "report", Usage: "report [form=<id>] [returned=yes|no]", Help: "summary report", Run: p.report},
		{Name: "resend", Usage: "resend <tracking-id>", Help: "send the form again", Run: p.resend},
	}
}

func (p *Tracking) check(ctx context.Context, _ []string) error {
	res, err := p.d.API.CheckReturns(ctx)
	if err != nil {
		return fmt.Errorf("error checking returns: %w", err)
	}
	level := ui.LevelInfo
	if res.NewReturns > 0 {
		level = ui.LevelSuccess
	}
	p.d.Notifier.Notify(level, res.Message)
	return p.Init(ctx)
}

func (p *Tracking) filter(ctx context.Context, args []string) error {
	f, err := parseTrackingFilter(args)
	if err != nil {
		return err
	}
	return p.render(ctx, f)
}

func (p *Tracking) report(ctx context.Context, args []string) error {
	f, err := parseTrackingFilter(args)
	if err != nil {
		return err
	}
	rep, err := p.d.API.TrackingReport(ctx, models.ReportOptions{FormID: f.FormID, Returned: f.Returned})
	if err != nil {
		return fmt.Errorf("error generating report: %w", err)
	}
	return p.d.show(ctx, "report", templates.Data{
		"total":     strconv.Itoa(rep.Total),
		"returned":  strconv.Itoa(rep.Returned),
		"pending":   strconv.Itoa(rep.Pending),
		"processed": strconv.Itoa(rep.Processed),
	})
}

func (p *Tracking) resend(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("resend <tracking-id>")
	}
	rec, err := p.d.API.GetTracking(ctx, args[0])
	if err != nil {
		return fmt.Errorf("error loading tracking record: %w", err)
	}
	res, err := p.d.API.ResendTracking(ctx, rec.ID, models.SendRequest{
		Recipients: []models.SendRecipient{{Email: rec.RecipientEmail, Name: rec.RecipientName}},
	})
	if err != nil {
		return fmt.Errorf("error resending form: %w", err)
	}
	if res.Status != "sent" {
		p.d.Notifier.Notify(ui.LevelError, res.Message)
		return nil
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("Form resent to %s successfully!", rec.RecipientName))
	return p.Init(ctx)
}
