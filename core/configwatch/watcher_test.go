package configwatch_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jdelaire/rtuservicebot/core/configwatch"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, called *atomic.Int32, what string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for called.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		default:
			time.Sleep(20 * time.Millisecond)
		}
	}
}

func TestWatcherDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	os.WriteFile(path, []byte(`{"v":1}`), 0644)

	var called atomic.Int32
	var gotPath atomic.Value
	w := configwatch.New(50*time.Millisecond, testLogger())
	w.Watch(path, func(p string) {
		gotPath.Store(p)
		called.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(path, []byte(`{"v":22}`), 0644)

	waitFor(t, &called, "change callback")
	if gotPath.Load() != path {
		t.Errorf("callback path = %v, want %s", gotPath.Load(), path)
	}
}

func TestWatcherNoCallbackWithoutChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	os.WriteFile(path, []byte(`{"v":1}`), 0644)

	var called atomic.Int32
	w := configwatch.New(50*time.Millisecond, testLogger())
	w.Watch(path, func(_ string) { called.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	time.Sleep(200 * time.Millisecond)
	cancel()

	if called.Load() != 0 {
		t.Errorf("callback fired %d times without file change", called.Load())
	}
}

func TestWatcherIgnoresDeletedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	os.WriteFile(path, []byte(`{"v":1}`), 0644)

	var called atomic.Int32
	w := configwatch.New(50*time.Millisecond, testLogger())
	w.Watch(path, func(_ string) { called.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	os.Remove(path)

	time.Sleep(200 * time.Millisecond)
	if called.Load() != 0 {
		t.Errorf("callback fired %d times for deleted file", called.Load())
	}
}

func TestWatcherFileAppearsLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	var called atomic.Int32
	w := configwatch.New(50*time.Millisecond, testLogger())
	w.Watch(path, func(_ string) { called.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(path, []byte(`{"v":1}`), 0644)

	waitFor(t, &called, "callback on new file")
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	w := configwatch.New(0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancel")
	}
}
