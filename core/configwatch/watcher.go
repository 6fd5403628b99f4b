package configwatch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 5 * time.Second

// Callback is invoked with the path of a file that changed.
type Callback func(path string)

// Watcher polls files for modification and invokes callbacks on change.
// A change is a new modification time or size; deletion is not a change.
type Watcher struct {
	interval time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	files []*watchedFile
}

type watchedFile struct {
	path string
	last fileStamp
	cb   Callback
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) missing() bool { return s.modTime.IsZero() }

// New creates a Watcher that polls at the given interval.
func New(interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		interval: interval,
		logger:   logger,
	}
}

// Watch registers cb for path. The file need not exist yet; its first
// appearance counts as a change.
func (w *Watcher) Watch(path string, cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = append(w.files, &watchedFile{
		path: path,
		last: stat(path),
		cb:   cb,
	})
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	w.mu.Lock()
	changed := make([]*watchedFile, 0, len(w.files))
	for _, f := range w.files {
		current := stat(f.path)
		// Missing files may be mid-save; wait for them to reappear.
		if current.missing() || current == f.last {
			continue
		}
		f.last = current
		changed = append(changed, f)
	}
	w.mu.Unlock()

	for _, f := range changed {
		w.logger.Info("watched file changed", "path", f.path)
		f.cb(f.path)
	}
}

func stat(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}
