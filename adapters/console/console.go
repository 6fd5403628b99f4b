// Package console runs the bot against a terminal: each stdin line is an
// inbound message and replies are printed to stdout.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jdelaire/rtuservicebot/core"
)

const (
	// ChatID is the synthetic chat every console message belongs to.
	ChatID = 1

	maxLineBytes = 64 * 1024
)

var (
	_ core.Receiver = (*Receiver)(nil)
	_ core.Notifier = (*Notifier)(nil)
)

// Receiver reads one message per line.
type Receiver struct {
	in      io.Reader
	handler core.MessageHandler
	logger  *slog.Logger
}

// NewReceiver creates a line-oriented receiver over in.
func NewReceiver(in io.Reader, handler core.MessageHandler, logger *slog.Logger) *Receiver {
	return &Receiver{in: in, handler: handler, logger: logger}
}

// Start reads lines until EOF or ctx is cancelled. Blank lines are skipped.
func (r *Receiver) Start(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	// errc always receives exactly one value before lines is closed.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, maxLineBytes), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	var updateID int64
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				if ctx.Err() == nil {
					r.logger.Info("console input closed")
				}
				return nil
			}
			if line == "" {
				continue
			}
			updateID++
			r.handler(core.InboundMessage{
				UpdateID:  updateID,
				MessageID: int(updateID),
				ChatID:    ChatID,
				ChatType:  core.ChatPrivate,
				Text:      line,
				Timestamp: time.Now(),
			})
		}
	}
}

// Notifier prints replies, one per block.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewNotifier creates a notifier writing to out.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Name() string { return "console" }

func (n *Notifier) Send(_ context.Context, notif core.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(n.out, "Bot: %s\n", notif.Text); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}
