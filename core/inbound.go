package core

import "time"

// Chat types reported by Telegram.
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
	ChatChannel    = "channel"
)

// InboundMessage represents a text message received from a chat.
type InboundMessage struct {
	UpdateID  int64
	MessageID int
	ChatID    int64
	ChatType  string
	UserID    int64
	Username  string
	Text      string
	Timestamp time.Time
}

// IsPrivate reports whether the message came from a one-to-one chat.
// Messages without a chat type (e.g. the console adapter) count as private.
func (m InboundMessage) IsPrivate() bool {
	return m.ChatType == "" || m.ChatType == ChatPrivate
}

// MessageHandler processes an inbound message.
type MessageHandler func(msg InboundMessage)
