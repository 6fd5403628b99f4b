package telegram_notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/rtuservicebot/core"
	"github.com/jdelaire/rtuservicebot/internal/tgclient"
)

func newTestNotification() core.Notification {
	return core.Notification{
		ID:        "test-id",
		ChatID:    12345,
		Text:      "hello from test",
		Source:    "test",
		CreatedAt: time.Now(),
	}
}

// fakeServer answers getMe and records sendMessage forms.
type fakeServer struct {
	mu        sync.Mutex
	paths     []string
	form      url.Values
	sendReply string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)

	if strings.HasSuffix(r.URL.Path, "/getMe") {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"id": 1, "is_bot": true, "first_name": "RTU", "username": "RTUService_bot"},
		})
		return
	}

	r.ParseForm()
	f.form = r.PostForm
	if f.sendReply != "" {
		w.Write([]byte(f.sendReply))
		return
	}
	w.Write([]byte(`{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":12345,"type":"private"}}}`))
}

func newTestNotifier(t *testing.T, fake *fakeServer, token string) *Notifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api, err := tgclient.New(context.Background(), token, tgclient.Options{Endpoint: srv.URL + "/bot%s/%s"})
	if err != nil {
		t.Fatalf("tgclient.New: %v", err)
	}
	return New(api)
}

func TestNotifier_SendSuccess(t *testing.T) {
	fake := &fakeServer{}
	n := newTestNotifier(t, fake, "test-token")

	if err := n.Send(context.Background(), newTestNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if got := fake.form.Get("chat_id"); got != "12345" {
		t.Errorf("expected chat_id 12345, got %s", got)
	}
	if got := fake.form.Get("text"); got != "hello from test" {
		t.Errorf("expected text 'hello from test', got %s", got)
	}
	if got := fake.form.Get("parse_mode"); got != "" {
		t.Errorf("expected no parse_mode, got %s", got)
	}
	if got := fake.form.Get("reply_to_message_id"); got != "" {
		t.Errorf("expected no reply_to_message_id, got %s", got)
	}
}

func TestNotifier_SendMarkdownReply(t *testing.T) {
	fake := &fakeServer{}
	n := newTestNotifier(t, fake, "test-token")

	notif := newTestNotification()
	notif.ParseMode = tgbotapi.ModeMarkdown
	notif.ReplyTo = 55

	if err := n.Send(context.Background(), notif); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if got := fake.form.Get("parse_mode"); got != "Markdown" {
		t.Errorf("expected parse_mode Markdown, got %s", got)
	}
	if got := fake.form.Get("reply_to_message_id"); got != "55" {
		t.Errorf("expected reply_to_message_id 55, got %s", got)
	}
}

func TestNotifier_SendAPIError(t *testing.T) {
	fake := &fakeServer{sendReply: `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`}
	n := newTestNotifier(t, fake, "test-token")

	err := n.Send(context.Background(), newTestNotification())
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNotifier_SendCancelledContext(t *testing.T) {
	fake := &fakeServer{}
	n := newTestNotifier(t, fake, "test-token")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.Send(ctx, newTestNotification()); err == nil {
		t.Fatal("expected error for cancelled context")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	for _, p := range fake.paths {
		if strings.HasSuffix(p, "/sendMessage") {
			t.Errorf("sendMessage called despite cancelled context")
		}
	}
}

func TestNotifier_Name(t *testing.T) {
	n := New(nil)
	if n.Name() != "telegram" {
		t.Errorf("expected name 'telegram', got %s", n.Name())
	}
}

func TestNotifier_BotTokenInURL(t *testing.T) {
	fake := &fakeServer{}
	n := newTestNotifier(t, fake, "my-secret-token")
	n.Send(context.Background(), newTestNotification())

	fake.mu.Lock()
	defer fake.mu.Unlock()
	last := fake.paths[len(fake.paths)-1]
	if last != "/botmy-secret-token/sendMessage" {
		t.Errorf("unexpected path: %s", last)
	}
}

func TestNotifier_SendHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			json.NewEncoder(w).Encode(map[string]any{
				"ok":     true,
				"result": map[string]any{"id": 1, "is_bot": true, "first_name": "RTU", "username": "RTUService_bot"},
			})
			return
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	api, err := tgclient.New(context.Background(), "test-token", tgclient.Options{Endpoint: srv.URL + "/bot%s/%s"})
	if err != nil {
		t.Fatalf("tgclient.New: %v", err)
	}
	n := New(api)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := n.Send(ctx, newTestNotification()); err == nil {
		t.Fatal("expected error when the send outlives its deadline")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Send returned after %v, want it bounded by the context deadline", elapsed)
	}
}
