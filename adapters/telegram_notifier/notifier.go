package telegram_notifier

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/rtuservicebot/core"
	"github.com/jdelaire/rtuservicebot/internal/tgclient"
)

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers replies via the Telegram Bot API.
type Notifier struct {
	api Sender
}

// New creates a Telegram notifier.
func New(api Sender) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) Name() string { return "telegram" }

// Send posts the notification to its chat. With a *tgbotapi.BotAPI sender
// the HTTP request is bound to ctx.
func (n *Notifier) Send(ctx context.Context, notif core.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sender := n.api
	if api, ok := n.api.(*tgbotapi.BotAPI); ok {
		sender = tgclient.Bind(ctx, api)
	}

	msg := tgbotapi.NewMessage(notif.ChatID, notif.Text)
	msg.ParseMode = notif.ParseMode
	if notif.ReplyTo != 0 {
		msg.ReplyToMessageID = notif.ReplyTo
		msg.AllowSendingWithoutReply = true
	}

	if _, err := sender.Send(msg); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("telegram API error %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("telegram request: %w", err)
	}
	return nil
}
