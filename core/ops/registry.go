package ops

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Op defines a command handler triggered by an inbound "/name" message.
type Op interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args string) (string, error)
}

// ErrInvalidName is returned when an op name is not a valid bot command.
var ErrInvalidName = errors.New("invalid command name")

// Bot API command names: 1-32 lowercase letters, digits and underscores.
var commandName = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// Command is the menu entry advertised for an op.
type Command struct {
	Name        string
	Description string
}

// Registry maps command names to ops and keeps them in registration order,
// which is the order the help menu and the bot's command list use.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Op
	order []Op
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Op)}
}

// Register adds op under its lowercase name.
func (r *Registry) Register(op Op) error {
	name := op.Name()
	if !commandName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byKey[name]; dup {
		return fmt.Errorf("command /%s already registered", name)
	}
	r.byKey[name] = op
	r.order = append(r.order, op)
	return nil
}

// Get looks up a command case-insensitively. It returns nil when unknown.
func (r *Registry) Get(name string) Op {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[strings.ToLower(name)]
}

// List returns the registered ops in registration order.
func (r *Registry) List() []Op {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Op(nil), r.order...)
}

// Commands returns the menu entries for all registered ops.
func (r *Registry) Commands() []Command {
	ops := r.List()
	cmds := make([]Command, len(ops))
	for i, op := range ops {
		cmds[i] = Command{Name: op.Name(), Description: op.Description()}
	}
	return cmds
}
