// Package bot turns inbound chat messages into tracker operations. It
// is transport-agnostic: the Telegram adapter lives in the telegram
// subpackage and anything implementing Transport works.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"pricewatch-backend/lib/telemetry"
	"pricewatch-backend/lib/textutil"
	"pricewatch-backend/lib/timezone"
	"pricewatch-backend/services/tracker"
	"pricewatch-backend/services/tracker/db"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("pricewatch.services.bot")

// Transport is the outbound side of the chat platform. Delivery may
// fail per recipient.
type Transport interface {
	SendText(ctx context.Context, userID int64, text string) error
}

// Message is one inbound chat message. Command holds the bare command
// name ("sub" for "/sub") and is empty for free text.
type Message struct {
	UserID   int64
	Username string
	Command  string
	Text     string
}

const helpText = `Available commands:
/sub - subscribe to an item's price, or switch your subscription
/unsub - drop your subscription
/list - items available for tracking
/hist - show the price history of your subscription
/cancel - abort the current dialog`

type Bot struct {
	service   tracker.Service
	transport Transport
	sessions  *sessions
}

func New(service tracker.Service, transport Transport) *Bot {
	return &Bot{
		service:   service,
		transport: transport,
		sessions:  newSessions(),
	}
}

// HandleMessage processes one inbound message to completion. Messages
// of different users may be handled concurrently; the platform
// serializes messages of a single user.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) {
	ctx, span := tracer.Start(ctx, "HandleMessage")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user", msg.UserID),
		attribute.String("command", msg.Command),
	)

	err := b.service.UpsertUser(ctx, msg.UserID, msg.Username)
	if err != nil {
		// store unavailable: drop the message, the user can retry
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to upsert user", "user", msg.UserID, "err", err)
		return
	}

	switch msg.Command {
	case "start":
		b.sessions.set(msg.UserID, stateIdle)
		b.reply(ctx, msg.UserID, fmt.Sprintf("Hi, %s! Use /help to see the available commands.", msg.Username))
	case "help":
		b.reply(ctx, msg.UserID, helpText)
	case "list":
		b.handleList(ctx, msg.UserID)
	case "unsub":
		b.handleUnsubscribe(ctx, msg.UserID)
	case "sub":
		b.sessions.set(msg.UserID, stateAwaitingSubscriptionName)
		b.reply(ctx, msg.UserID, "Enter the item name:")
	case "hist":
		b.sessions.set(msg.UserID, stateAwaitingHistoryWindow)
		b.reply(ctx, msg.UserID, "Enter the number of days:")
	case "cancel":
		b.sessions.set(msg.UserID, stateIdle)
		b.reply(ctx, msg.UserID, "Dialog cancelled.")
	case "":
		b.handleText(ctx, msg)
	default:
		b.reply(ctx, msg.UserID, "Unknown command. Use /help to see the available commands.")
	}
}

func (b *Bot) handleText(ctx context.Context, msg Message) {
	state := b.sessions.get(msg.UserID)
	// any reply ends the pending exchange, whatever the outcome
	b.sessions.set(msg.UserID, stateIdle)

	switch state {
	case stateAwaitingSubscriptionName:
		b.handleSubscriptionName(ctx, msg.UserID, msg.Text)
	case stateAwaitingHistoryWindow:
		b.handleHistoryWindow(ctx, msg.UserID, msg.Text)
	default:
		// stray free text outside a dialog is ignored
	}
}

func (b *Bot) handleList(ctx context.Context, userID int64) {
	items, err := b.service.AllItems(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list items", "err", err)
		b.reply(ctx, userID, "Something went wrong, please try again.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Tracked items:\n")
	for _, item := range items {
		sb.WriteString(item.Name)
		sb.WriteString("\n")
	}
	b.reply(ctx, userID, sb.String())
}

func (b *Bot) handleUnsubscribe(ctx context.Context, userID int64) {
	err := b.service.Unsubscribe(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to unsubscribe", "user", userID, "err", err)
		b.reply(ctx, userID, "Something went wrong, please try again.")
		return
	}
	b.reply(ctx, userID, "Subscription removed.")
}

func (b *Bot) handleSubscriptionName(ctx context.Context, userID int64, text string) {
	name := textutil.NormalizeName(text)

	err := b.service.Subscribe(ctx, userID, name)
	if errors.Is(err, tracker.ErrUnknownItem) {
		response := "There is no such item."
		suggestion, ok, serr := b.service.SuggestItem(ctx, name)
		if serr == nil && ok {
			response = fmt.Sprintf("There is no such item. Did you mean %s?", suggestion)
		}
		b.reply(ctx, userID, response)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe", "user", userID, "err", err)
		b.reply(ctx, userID, "Something went wrong, please try again.")
		return
	}
	b.reply(ctx, userID, fmt.Sprintf("Subscribed to %s.", name))
}

func (b *Bot) handleHistoryWindow(ctx context.Context, userID int64, text string) {
	days, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		b.reply(ctx, userID, "That is not a valid number of days.")
		return
	}

	itemID, ok, err := b.service.SubscriptionOf(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read subscription", "user", userID, "err", err)
		b.reply(ctx, userID, "Something went wrong, please try again.")
		return
	}
	if !ok {
		b.reply(ctx, userID, "You have no active subscription.")
		return
	}

	points, err := b.service.PriceHistory(ctx, itemID, time.Duration(days)*24*time.Hour)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read price history", "user", userID, "err", err)
		b.reply(ctx, userID, "Something went wrong, please try again.")
		return
	}

	currency, err := b.service.CurrencyOf(ctx, itemID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read item currency", "user", userID, "err", err)
		b.reply(ctx, userID, "Something went wrong, please try again.")
		return
	}

	b.reply(ctx, userID, formatHistory(tracker.Sample(points), currency))
}

func formatHistory(points []db.PriceHistory, currency string) string {
	if len(points) == 0 {
		return "No observations in this period."
	}

	var sb strings.Builder
	for _, p := range points {
		at := time.Unix(p.Observedat, 0).In(timezone.Location)
		fmt.Fprintf(&sb, "%s: %s %s\n",
			at.Format("2006-01-02 15:04"),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			currency,
		)
	}
	return sb.String()
}

func (b *Bot) reply(ctx context.Context, userID int64, text string) {
	err := b.transport.SendText(ctx, userID, text)
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver reply", "user", userID, "err", err)
	}
}
