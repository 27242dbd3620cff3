package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pricewatch-backend/lib/mailer"
	"pricewatch-backend/lib/scrapers/quotes"

	"go.opentelemetry.io/otel/codes"
)

// Poller drives fetch+extract against every non-failed item on a fixed
// cadence and writes the results back. Failures are isolated per item:
// a broken page flags that one item and the cycle moves on.
type Poller struct {
	service  Service
	interval time.Duration
	alerts   mailer.Mailer
}

func NewPoller(service Service, interval time.Duration, alerts mailer.Mailer) Poller {
	if interval <= 0 {
		interval = time.Second * 30
	}
	return Poller{
		service:  service,
		interval: interval,
		alerts:   alerts,
	}
}

// Run polls once immediately, then on every tick until ctx is done.
func (p Poller) Run(ctx context.Context) {
	p.pollOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p Poller) pollOnce(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "poll_cycle")
	defer span.End()

	items, err := p.service.PollableItems(ctx)
	if err != nil {
		// store unavailable: retry next cycle, flag nothing
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to list pollable items", "err", err)
		return
	}

	for _, item := range items {
		price, err := quotes.FetchValue(ctx, item.PageUrl, item.Pattern)
		if err != nil {
			p.flagItem(ctx, item.ItemID, item.Name, err)
			continue
		}

		err = p.service.RecordPrice(ctx, item.ItemID, price)
		if err != nil {
			slog.ErrorContext(ctx, "failed to record price", "item", item.Name, "err", err)
		}
	}
}

// flagItem sets the sticky error flag and alerts the operator. The
// flag excludes the item from every following cycle until it is
// cleared by hand.
func (p Poller) flagItem(ctx context.Context, itemID int64, name string, cause error) {
	slog.ErrorContext(ctx, "item failed, excluding from polling", "item", name, "err", cause)

	err := p.service.MarkError(ctx, itemID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set item error flag", "item", name, "err", err)
		return
	}

	err = p.alerts.Send(
		fmt.Sprintf("pricewatch: item %q stopped tracking", name),
		fmt.Sprintf("Polling for %q failed and the item was excluded from further cycles.\n\nCause: %v\n\nRe-enable it with: pricewatch-cli items retry %s\n", name, cause, name),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send alert mail", "item", name, "err", err)
	}
}
