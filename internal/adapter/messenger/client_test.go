package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/polkiloo/storebot/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewTelegramClientValidates(t *testing.T) {
	if _, err := NewTelegramClient("://bad", "t"); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewTelegramClient("/relative", "t"); err == nil {
		t.Fatal("expected error for relative url")
	}
	if _, err := NewTelegramClient("http://example.com", ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSendMessage(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewTelegramClient(srv.URL, "TOKEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.SendMessage(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ChatID != 42 || got.Text != "hello" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestSendMessageErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
	}{
		{"blocked", http.StatusForbidden, `{"ok":false,"description":"Forbidden: bot was blocked by the user"}`, true},
		{"chat not found", http.StatusBadRequest, `{"ok":false,"description":"Bad Request: chat not found"}`, true},
		{"server error", http.StatusBadGateway, ``, false},
		{"not ok", http.StatusOK, `{"ok":false}`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, _ := NewTelegramClient(srv.URL, "TOKEN")
			err := client.SendMessage(context.Background(), 1, "x")
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrRecipientUnavailable) != tc.unavailable {
				t.Fatalf("unexpected error classification: %v", err)
			}
		})
	}
}

func TestNewMessengerUsesConfig(t *testing.T) {
	m, err := newMessenger(messengerParams{Config: &config.Config{}, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(*LogMessenger); !ok {
		t.Fatalf("expected log messenger without token, got %T", m)
	}
	if err := m.SendMessage(context.Background(), 1, "x"); err != nil {
		t.Fatalf("log messenger must not fail: %v", err)
	}

	m, err = newMessenger(messengerParams{Config: &config.Config{BotToken: "t", TelegramAPIURL: "https://api.telegram.org"}, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(*TelegramClient); !ok {
		t.Fatalf("expected telegram client, got %T", m)
	}
}

func TestSendMessageHonoursContextWhileRateLimited(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer srv.Close()

	client, err := NewTelegramClient(srv.URL, "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.SendMessage(ctx, 1, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("expected no request, got %d", hits)
	}
}
