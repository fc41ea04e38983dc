package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

type Dashboard struct {
	d *Deps
}

func NewDashboard(d *Deps) *Dashboard { return &Dashboard{d: d} }

func (p *Dashboard) Init(ctx context.Context) error {
	summary, err := p.d.API.DashboardSummary(ctx)
	if err != nil {
		return fmt.Errorf("error loading dashboard data: %w", err)
	}

	items := make([]templates.Data, 0, len(summary.RecentActivity))
	for _, a := range summary.RecentActivity {
		items = append(items, templates.Data{
			"date":     ui.FormatDate(a.Date),
			"activity": a.Activity,
			"status":   p.d.badge(a.Status),
		})
	}
	activity, err := p.d.rows("activity-row", items, "No recent activity")
	if err != nil {
		return err
	}
	return p.d.show(ctx, "dashboard", templates.Data{
		"formsCount":         strconv.Itoa(summary.FormsCount),
		"recipientsCount":    strconv.Itoa(summary.RecipientsCount),
		"emailsSentCount":    strconv.Itoa(summary.EmailsSentCount),
		"formsReturnedCount": strconv.Itoa(summary.FormsReturnedCount),
		"activity":           activity,
	})
}

func (p *Dashboard) Commands() []Command {
	return []Command{
		{Name: "refresh", Usage: "refresh", Help: "reload the dashboard", Run: func(ctx context.Context, _ []string) error {
			return p.Init(ctx)
		}},
		{Name: "new", Usage: "new", Help: "go to the forms page", Run: func(ctx context.Context, _ []string) error {
			p.d.Navigator.Navigate(ctx, "/forms")
			return nil
		}},
	}
}
