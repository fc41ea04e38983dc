package pages

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/store"
	"github.com/harrylevesque/emailforms/internal/templates"
	"github.com/harrylevesque/emailforms/internal/ui"
)

type Extraction struct {
	d *Deps

	mu      sync.Mutex
	pending []models.PendingExtraction
}

func NewExtraction(d *Deps) *Extraction { return &Extraction{d: d} }

// Init loads pending returns and extracted data concurrently.
func (p *Extraction) Init(ctx context.Context) error {
	var (
		pending []models.PendingExtraction
		data    []models.ExtractedData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = p.d.API.PendingExtractions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data, err = p.d.API.ExtractedData(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("error loading extraction data: %w", err)
	}

	if !p.d.Store.SetStateContext(ctx, store.WithExtractedData(data)) {
		return ctx.Err()
	}
	p.mu.Lock()
	p.pending = pending
	p.mu.Unlock()
	return p.render(ctx)
}

func (p *Extraction) render(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.mu.Unlock()
	data := p.d.Store.GetState().ExtractedData

	pendingItems := make([]templates.Data, 0, len(pending))
	for _, e := range pending {
		pendingItems = append(pendingItems, templates.Data{
			"id":             e.ID,
			"formName":       e.FormName,
			"recipientName":  e.RecipientName,
			"recipientEmail": e.RecipientEmail,
			"dateReturned":   ui.FormatDate(e.DateReturned),
		})
	}
	pendingRows, err := p.d.rows("pending-row", pendingItems, "No forms waiting for extraction.")
	if err != nil {
		return err
	}

	dataItems := make([]templates.Data, 0, len(data))
	for _, e := range data {
		dataItems = append(dataItems, templates.Data{
			"id":            e.ID,
			"formName":      e.FormName,
			"recipientName": e.RecipientName,
			"fields":        formatFields(e.Fields),
		})
	}
	dataRows, err := p.d.rows("data-row", dataItems, "No extracted data yet.")
	if err != nil {
		return err
	}

	return p.d.show(ctx, "extraction", templates.Data{
		"pendingCount": "(" + strconv.Itoa(len(pending)) + ")",
		"pending":      pendingRows,
		"dataCount":    "(" + strconv.Itoa(len(data)) + ")",
		"data":         dataRows,
	})
}

func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, ", ")
}

func (p *Extraction) Commands() []Command {
	return []Command{
		{Name: "refresh", Usage: "refresh", Help: "reload", Run: func(ctx context.Context, _ []string) error {
			return p.Init(ctx)
		}},
		{Name: "extract", Usage: "extract <tracking-id>...|all", Help: "extract data from returned forms", Run: p.extract},
		{Name: "export", Usage: "export [data-id]...", Help: "export extracted data", Run: p.export},
	}
}

func (p *Extraction) extract(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("extract <tracking-id>...|all")
	}
	ids := args
	if len(args) == 1 && args[0] == "all" {
		p.mu.Lock()
		ids = make([]string, 0, len(p.pending))
		for _, e := range p.pending {
			ids = append(ids, e.ID)
		}
		p.mu.Unlock()
		if len(ids) == 0 {
			p.d.Notifier.Notify(ui.LevelInfo, "No forms waiting for extraction.")
			return nil
		}
	}
	res, err := p.d.API.Extract(ctx, ids)
	if err != nil {
		return fmt.Errorf("error extracting data: %w", err)
	}
	level := ui.LevelSuccess
	if res.Failed > 0 {
		level = ui.LevelWarning
	}
	p.d.Notifier.Notify(level, res.Message)
	return p.Init(ctx)
}

func (p *Extraction) export(ctx context.Context, args []string) error {
	res, err := p.d.API.ExportExtracted(ctx, args)
	if err != nil {
		return fmt.Errorf("error exporting data: %w", err)
	}
	p.d.Notifier.Notify(ui.LevelSuccess, fmt.Sprintf("%s (%d rows, %s)", res.Message, res.Rows, res.File))
	return nil
}
