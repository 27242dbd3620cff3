// Package tracker owns all durable state of the price tracker: items,
// users, subscriptions and the append-only price history. Every
// operation is a single transaction (or single statement), which is the
// only synchronization between the poll loop, the dispatcher and the
// bot handlers.
package tracker

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pricewatch-backend/lib/telemetry"
	"pricewatch-backend/lib/timezone"
	"pricewatch-backend/services/tracker/db"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("pricewatch.services.tracker")

// ErrUnknownItem is returned by Subscribe when the item name resolves
// to nothing. No state is mutated in that case.
var ErrUnknownItem = errors.New("unknown item")

// DefaultHistoryWindow is used when a caller asks for history with a
// non-positive window.
const DefaultHistoryWindow = 7 * 24 * time.Hour

// suggestionThreshold is the minimum JaroWinkler similarity for a
// "did you mean" suggestion.
const suggestionThreshold = 0.8

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// UpsertUser inserts the user if absent; existing rows are untouched
// so the platform id stays immutable.
func (s Service) UpsertUser(ctx context.Context, userID int64, username string) error {
	ctx, span := tracer.Start(ctx, "UpsertUser")
	defer span.End()
	span.SetAttributes(attribute.Int64("user", userID))

	err := s.qry.CreateUser(ctx, db.CreateUserParams{
		UserID:   userID,
		Username: username,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Subscribe resolves the item name and replaces the user's current
// subscription with it in one transaction. A user follows at most one
// item at any instant; switching discards the previous subscription.
func (s Service) Subscribe(ctx context.Context, userID int64, itemName string) error {
	ctx, span := tracer.Start(ctx, "Subscribe")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user", userID),
		attribute.String("item", itemName),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	itemID, err := txqry.GetItemIdByName(ctx, itemName)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownItem
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = txqry.SetSubscription(ctx, db.SetSubscriptionParams{
		UserID: userID,
		ItemID: itemID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Unsubscribe removes the user's subscription. Calling it without one
// is a no-op.
func (s Service) Unsubscribe(ctx context.Context, userID int64) error {
	ctx, span := tracer.Start(ctx, "Unsubscribe")
	defer span.End()
	span.SetAttributes(attribute.Int64("user", userID))

	err := s.qry.DeleteSubscription(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// SubscriptionOf returns the item the user currently follows, ok=false
// when there is none.
func (s Service) SubscriptionOf(ctx context.Context, userID int64) (itemID int64, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "SubscriptionOf")
	defer span.End()

	itemID, err = s.qry.GetSubscription(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, err
	}
	return itemID, true, nil
}

// SuggestItem returns the known item name closest to the given one,
// ok=false when nothing clears the similarity threshold.
func (s Service) SuggestItem(ctx context.Context, itemName string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "SuggestItem")
	defer span.End()

	items, err := s.qry.GetAllItems(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}

	// names are matched case-insensitively, JaroWinkler itself is not
	needle := strings.ToLower(itemName)
	best := ""
	bestSimilarity := 0.0
	for _, item := range items {
		similarity := matchr.JaroWinkler(needle, strings.ToLower(item.Name), true)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = item.Name
		}
	}
	if bestSimilarity < suggestionThreshold {
		return "", false, nil
	}
	return best, true, nil
}

// RecordPrice appends an observation stamped with the current time.
// History is append-only, rows are never updated or deleted.
func (s Service) RecordPrice(ctx context.Context, itemID int64, price float64) error {
	ctx, span := tracer.Start(ctx, "RecordPrice")
	defer span.End()
	span.SetAttributes(attribute.Int64("item", itemID))

	err := s.qry.CreatePricePoint(ctx, db.CreatePricePointParams{
		ItemID:     itemID,
		Price:      price,
		Observedat: timezone.Now().Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// PriceHistory returns the item's observations within
// [now-window, now] in ascending time order. A non-positive window
// falls back to DefaultHistoryWindow.
func (s Service) PriceHistory(ctx context.Context, itemID int64, window time.Duration) ([]db.PriceHistory, error) {
	ctx, span := tracer.Start(ctx, "PriceHistory")
	defer span.End()
	span.SetAttributes(attribute.Int64("item", itemID))

	if window <= 0 {
		window = DefaultHistoryWindow
	}
	now := timezone.Now()

	points, err := s.qry.GetPriceHistory(ctx, db.GetPriceHistoryParams{
		ItemID: itemID,
		After:  now.Add(-window).Unix(),
		Before: now.Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return points, nil
}

// LatestPrice returns the newest observation for the item, ok=false
// when the series is empty.
func (s Service) LatestPrice(ctx context.Context, itemID int64) (point db.PriceHistory, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "LatestPrice")
	defer span.End()

	point, err = s.qry.GetLatestPrice(ctx, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return db.PriceHistory{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return db.PriceHistory{}, false, err
	}
	return point, true, nil
}

func (s Service) CurrencyOf(ctx context.Context, itemID int64) (string, error) {
	return s.qry.GetItemCurrency(ctx, itemID)
}

func (s Service) AllItems(ctx context.Context) ([]db.GetAllItemsRow, error) {
	return s.qry.GetAllItems(ctx)
}

// ListItems returns every item with its full row, error flag included.
func (s Service) ListItems(ctx context.Context) ([]db.Item, error) {
	return s.qry.ListItems(ctx)
}

// PollableItems returns every item whose sticky error flag is unset.
func (s Service) PollableItems(ctx context.Context) ([]db.GetPollableItemsRow, error) {
	return s.qry.GetPollableItems(ctx)
}

func (s Service) AllSubscriptions(ctx context.Context) ([]db.Subscription, error) {
	return s.qry.GetAllSubscriptions(ctx)
}

// MarkError sets the item's sticky error flag. Nothing in the runtime
// ever clears it; only ClearError (operator CLI) does.
func (s Service) MarkError(ctx context.Context, itemID int64) error {
	ctx, span := tracer.Start(ctx, "MarkError")
	defer span.End()
	span.SetAttributes(attribute.Int64("item", itemID))

	err := s.qry.SetItemError(ctx, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// ClearError resets the sticky error flag so the item is polled again.
func (s Service) ClearError(ctx context.Context, itemID int64) error {
	return s.qry.ClearItemError(ctx, itemID)
}

func (s Service) ItemByName(ctx context.Context, name string) (db.Item, bool, error) {
	item, err := s.qry.GetItemByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Item{}, false, nil
	}
	if err != nil {
		return db.Item{}, false, err
	}
	return item, true, nil
}

// CreateItem registers a new tracked item; a duplicate name is ignored.
func (s Service) CreateItem(ctx context.Context, name, pageUrl, pattern, currency string) error {
	return s.qry.CreateItem(ctx, db.CreateItemParams{
		Name:     name,
		PageUrl:  pageUrl,
		Pattern:  pattern,
		Currency: currency,
	})
}
