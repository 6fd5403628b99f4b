package core

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrorHandler is invoked when handling an update fails. It must not reply
// to the user; the dispatcher keeps serving later updates either way.
type ErrorHandler func(msg InboundMessage, err error)

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// LogErrors returns an ErrorHandler that logs the update, the error and a
// stack trace.
func LogErrors(logger *slog.Logger) ErrorHandler {
	return func(msg InboundMessage, err error) {
		var stack []byte
		var pe *PanicError
		if errors.As(err, &pe) {
			stack = pe.Stack
		} else {
			stack = debug.Stack()
		}

		logger.Error("update caused error",
			"update_id", msg.UpdateID,
			"chat_id", msg.ChatID,
			"chat_type", msg.ChatType,
			"user_id", msg.UserID,
			"text", msg.Text,
			"error", err,
			"stack", string(stack),
		)
	}
}
