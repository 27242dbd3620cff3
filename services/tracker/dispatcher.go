package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"pricewatch-backend/lib/timezone"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/codes"
)

// Notifier is the outbound side of the chat transport: deliver a text
// to one user. Delivery may fail per recipient (blocked bot, closed
// chat) and the dispatcher treats that as that recipient's problem
// only.
type Notifier interface {
	SendText(ctx context.Context, userID int64, text string) error
}

// Dispatcher periodically pushes the latest observed price to every
// subscriber, on a wall-clock cron schedule independent of the poll
// loop.
type Dispatcher struct {
	service  Service
	notifier Notifier
	cronSpec string
}

func NewDispatcher(service Service, notifier Notifier, cronSpec string) Dispatcher {
	if cronSpec == "" {
		cronSpec = "0 * * * *"
	}
	return Dispatcher{
		service:  service,
		notifier: notifier,
		cronSpec: cronSpec,
	}
}

// Start registers the broadcast job and runs it until ctx is done.
func (d Dispatcher) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(timezone.Location))
	_, err := c.AddFunc(d.cronSpec, func() {
		d.broadcastOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("register broadcast job: %w", err)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

func (d Dispatcher) broadcastOnce(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "broadcast")
	defer span.End()

	subscriptions, err := d.service.AllSubscriptions(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to list subscriptions", "err", err)
		return
	}

	for _, sub := range subscriptions {
		point, ok, err := d.service.LatestPrice(ctx, sub.ItemID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to read latest price", "item", sub.ItemID, "err", err)
			continue
		}
		if !ok {
			// nothing observed yet, skip this subscriber silently
			continue
		}

		currency, err := d.service.CurrencyOf(ctx, sub.ItemID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to read item currency", "item", sub.ItemID, "err", err)
			continue
		}

		text := fmt.Sprintf("Current price: %s %s", strconv.FormatFloat(point.Price, 'f', -1, 64), currency)
		err = d.notifier.SendText(ctx, sub.UserID, text)
		if err != nil {
			slog.ErrorContext(ctx, "failed to deliver price update", "user", sub.UserID, "err", err)
		}
	}
}
