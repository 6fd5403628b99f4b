package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/jdelaire/rtuservicebot/core/ops"
	"github.com/jdelaire/rtuservicebot/core/policy"
)

const (
	opTimeout   = 30 * time.Second
	sendTimeout = 10 * time.Second
)

// Responder turns free text into a reply.
type Responder interface {
	Respond(text string) string
}

// Dispatcher filters inbound messages, routes commands to ops and plain
// text to the responder, and sends the reply back to the originating chat.
type Dispatcher struct {
	policy      *policy.Policy
	ops         *ops.Registry
	responder   Responder
	notifier    Notifier
	logger      *slog.Logger
	onError     ErrorHandler
	botUsername string
}

// NewDispatcher creates a Dispatcher. Errors are logged with LogErrors
// unless WithErrorHandler overrides it.
func NewDispatcher(pol *policy.Policy, opsReg *ops.Registry, responder Responder, notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		policy:    pol,
		ops:       opsReg,
		responder: responder,
		notifier:  notifier,
		logger:    logger,
		onError:   LogErrors(logger),
	}
}

// WithErrorHandler replaces the error handler.
func (d *Dispatcher) WithErrorHandler(h ErrorHandler) *Dispatcher {
	if h != nil {
		d.onError = h
	}
	return d
}

// WithBotUsername makes the dispatcher ignore "/cmd@otherbot" commands.
func (d *Dispatcher) WithBotUsername(name string) *Dispatcher {
	d.botUsername = strings.TrimPrefix(name, "@")
	return d
}

// Handle processes an inbound message. Failures and panics go to the
// error handler and never propagate to the caller.
func (d *Dispatcher) Handle(msg InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.onError(msg, &PanicError{Value: r, Stack: debug.Stack()})
		}
	}()

	if err := d.handle(msg); err != nil {
		d.onError(msg, err)
	}
}

func (d *Dispatcher) handle(msg InboundMessage) error {
	if err := d.policy.Authorize(msg.ChatID, msg.UpdateID, msg.Timestamp); err != nil {
		d.logger.Debug("message rejected by policy", "chat_id", msg.ChatID, "update_id", msg.UpdateID, "error", err)
		return nil
	}

	d.logger.Info("inbound message", "chat_id", msg.ChatID, "chat_type", msg.ChatType, "text", msg.Text)

	cmd, target, args := parseCommand(msg.Text)
	if cmd == "" {
		return d.respond(msg, d.responder.Respond(msg.Text), ops.ModePlain)
	}

	if target != "" && d.botUsername != "" && !strings.EqualFold(target, d.botUsername) {
		d.logger.Debug("command addressed to another bot", "command", cmd, "bot", target)
		return nil
	}

	op := d.ops.Get(cmd)
	if op == nil {
		d.logger.Debug("unknown command ignored", "command", cmd, "chat_id", msg.ChatID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	result, err := op.Execute(ctx, args)
	if err != nil {
		return fmt.Errorf("op /%s: %w", cmd, err)
	}

	return d.respond(msg, result, ops.ParseModeOf(op))
}

// respond sends text to the chat msg came from. Replies in group chats
// quote the triggering message.
func (d *Dispatcher) respond(msg InboundMessage, text, parseMode string) error {
	n := Notification{
		ID:        uuid.NewString(),
		ChatID:    msg.ChatID,
		Text:      text,
		ParseMode: parseMode,
		Source:    "dispatcher",
		CreatedAt: time.Now(),
	}
	if !msg.IsPrivate() {
		n.ReplyTo = msg.MessageID
	}

	d.logger.Info("bot reply", "id", n.ID, "chat_id", msg.ChatID, "reply", text)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.notifier.Send(ctx, n); err != nil {
		return fmt.Errorf("send reply via %s: %w", d.notifier.Name(), err)
	}
	return nil
}

// parseCommand extracts the command name, the optional @bot target and the
// arguments from a message. It handles "/command", "/command args", and
// "/command@botname args". Non-commands yield an empty cmd.
func parseCommand(text string) (cmd, target, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", ""
	}

	text = text[1:]
	cmd = text
	if i := strings.IndexFunc(text, unicode.IsSpace); i != -1 {
		cmd = text[:i]
		args = strings.TrimSpace(text[i:])
	}

	if at := strings.Index(cmd, "@"); at != -1 {
		target = cmd[at+1:]
		cmd = cmd[:at]
	}

	if cmd == "" {
		return "", "", ""
	}
	return strings.ToLower(cmd), target, args
}
