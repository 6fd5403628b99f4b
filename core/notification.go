package core

import "time"

// Notification is an outbound reply to be delivered to a chat.
type Notification struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	ParseMode string    `json:"parse_mode,omitempty"`
	ReplyTo   int       `json:"reply_to,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
