package telegram_receiver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/rtuservicebot/core"
)

const (
	longPollTimeout = 30
	errorBackoff    = 5 * time.Second
)

var _ core.Receiver = (*Receiver)(nil)

// Receiver long-polls Telegram for inbound text messages.
type Receiver struct {
	api     *tgbotapi.BotAPI
	handler core.MessageHandler
	logger  *slog.Logger
	offset  int
	backoff time.Duration
}

// New creates a Telegram receiver. api should be built with tgclient.New so
// that cancelling the Start context also aborts an in-flight poll.
func New(api *tgbotapi.BotAPI, handler core.MessageHandler, logger *slog.Logger) *Receiver {
	return &Receiver{
		api:     api,
		handler: handler,
		logger:  logger,
		backoff: errorBackoff,
	}
}

// WithBackoff overrides the delay after a failed poll (for testing).
func (r *Receiver) WithBackoff(d time.Duration) *Receiver {
	r.backoff = d
	return r
}

// Start runs the long-poll loop, handing each update to the handler in
// order. Blocks until ctx is cancelled.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.Info("telegram receiver started", "bot", r.api.Self.UserName)
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info("telegram receiver stopped")
			return nil
		}

		updates, err := r.poll()
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("telegram receiver stopped")
				return nil
			}
			r.logger.Error("poll error", "error", err)
			select {
			case <-time.After(r.backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, u := range updates {
			r.offset = u.UpdateID + 1

			msg, ok := toInbound(u)
			if !ok {
				continue
			}
			r.handler(msg)
		}
	}
}

func (r *Receiver) poll() ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(r.offset)
	cfg.Timeout = longPollTimeout
	cfg.AllowedUpdates = []string{"message"}

	updates, err := r.api.GetUpdates(cfg)
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	return updates, nil
}

// toInbound converts an update carrying a text message. Other updates
// (stickers, joins, edits) are skipped.
func toInbound(u tgbotapi.Update) (core.InboundMessage, bool) {
	m := u.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return core.InboundMessage{}, false
	}

	msg := core.InboundMessage{
		UpdateID:  int64(u.UpdateID),
		MessageID: m.MessageID,
		ChatID:    m.Chat.ID,
		ChatType:  m.Chat.Type,
		Text:      m.Text,
		Timestamp: time.Unix(int64(m.Date), 0),
	}
	if m.From != nil {
		msg.UserID = m.From.ID
		msg.Username = m.From.UserName
	}
	return msg, true
}
