package core

import "context"

// Notifier delivers replies to an external channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}
