package core

import (
	"log/slog"
	"sync"

	"github.com/jdelaire/rtuservicebot/internal/responder"
)

// Reloader hot-reloads the keyword rule table from disk.
type Reloader struct {
	responder *responder.Responder
	logger    *slog.Logger

	mu sync.Mutex
}

// NewReloader creates a reloader that updates r in place.
func NewReloader(r *responder.Responder, logger *slog.Logger) *Reloader {
	return &Reloader{
		responder: r,
		logger:    logger,
	}
}

// ReloadRules loads the rule file at path and swaps it into the responder.
// A missing or invalid file leaves the current rules untouched.
func (r *Reloader) ReloadRules(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := responder.LoadRules(path)
	if err != nil {
		r.logger.Error("reload rules failed", "path", path, "error", err)
		return
	}
	if rf == nil {
		r.logger.Warn("rules file missing, keeping current rules", "path", path)
		return
	}

	r.responder.SetRules(rf.Rules, rf.Fallback)
	r.logger.Info("rules reloaded", "path", path, "count", len(rf.Rules))
}
