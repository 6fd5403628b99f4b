package policy

import (
	"fmt"
	"sync"
	"time"
)

const (
	maxSeenIDs = 10000
	pruneCount = 1000
)

// Options configures a Policy.
type Options struct {
	// AllowedChats restricts the bot to these chats. Empty allows every chat.
	AllowedChats []int64
	// MaxAge drops messages older than this. Zero disables the check.
	MaxAge time.Duration
}

// Policy filters inbound messages by chat allowlist, freshness window,
// and update_id deduplication.
type Policy struct {
	mu        sync.Mutex
	allowed   map[int64]bool
	maxAge    time.Duration
	seen      map[int64]bool
	seenOrder []int64
	now       func() time.Time
}

// New creates a Policy.
func New(opts Options) *Policy {
	allowed := make(map[int64]bool, len(opts.AllowedChats))
	for _, id := range opts.AllowedChats {
		allowed[id] = true
	}
	return &Policy{
		allowed: allowed,
		maxAge:  opts.MaxAge,
		seen:    make(map[int64]bool),
		now:     time.Now,
	}
}

// Authorize checks whether a message should be processed.
func (p *Policy) Authorize(chatID int64, updateID int64, timestamp time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.allowed) > 0 && !p.allowed[chatID] {
		return fmt.Errorf("chat not allowed: %d", chatID)
	}

	if p.maxAge > 0 && !timestamp.IsZero() {
		if age := p.now().Sub(timestamp); age > p.maxAge {
			return fmt.Errorf("stale message: %v old", age.Truncate(time.Second))
		}
	}

	if p.seen[updateID] {
		return fmt.Errorf("duplicate update: %d", updateID)
	}

	if len(p.seen) >= maxSeenIDs {
		n := pruneCount
		if n > len(p.seenOrder) {
			n = len(p.seenOrder)
		}
		for _, id := range p.seenOrder[:n] {
			delete(p.seen, id)
		}
		p.seenOrder = p.seenOrder[n:]
	}

	p.seen[updateID] = true
	p.seenOrder = append(p.seenOrder, updateID)

	return nil
}
