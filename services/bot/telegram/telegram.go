// Package telegram adapts the Telegram bot API (long-polling) to the
// bot package's transport boundary.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"pricewatch-backend/services/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Client struct {
	api *tgbotapi.BotAPI
}

func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Client{api: api}, nil
}

func (c *Client) SendText(ctx context.Context, userID int64, text string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// Run feeds long-polling updates into b until ctx is done. Updates are
// handled in arrival order, which keeps each user's messages
// serialized.
func (c *Client) Run(ctx context.Context, b *bot.Bot) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		c.api.StopReceivingUpdates()
	}()

	slog.Info("telegram bot listening", "username", c.api.Self.UserName)

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		m := update.Message

		msg := bot.Message{
			UserID:   m.From.ID,
			Username: displayName(m.From),
			Text:     m.Text,
		}
		if m.IsCommand() {
			msg.Command = m.Command()
			msg.Text = m.CommandArguments()
		}

		b.HandleMessage(ctx, msg)
	}
}

func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}
