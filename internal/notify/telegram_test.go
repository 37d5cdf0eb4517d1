package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

func TestSendMessage(t *testing.T) {
	var got telegramMessage
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewTelegramClient(TelegramConfig{
		BotToken: "test-token",
		ChatID:   "42",
		BaseURL:  srv.URL,
	}, logging.Default())

	if err := client.SendMessage(context.Background(), "hello owner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if got.ChatID != "42" {
		t.Errorf("expected chat_id 42, got %s", got.ChatID)
	}
	if got.Text != "hello owner" {
		t.Errorf("unexpected text %q", got.Text)
	}
	if got.ParseMode != "Markdown" {
		t.Errorf("expected Markdown parse mode, got %q", got.ParseMode)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewTelegramClient(TelegramConfig{
		BotToken: "test-token",
		ChatID:   "42",
		BaseURL:  srv.URL,
	}, logging.Default())

	if err := client.SendMessage(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestSendMessageNotConfigured(t *testing.T) {
	client := NewTelegramClient(TelegramConfig{}, logging.Default())

	if client.Configured() {
		t.Fatal("client without credentials should not report configured")
	}
	err := client.SendMessage(context.Background(), "hello")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSendMessageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewTelegramClient(TelegramConfig{
		BotToken: "test-token",
		ChatID:   "42",
		BaseURL:  srv.URL,
	}, logging.Default())

	if err := client.SendMessage(context.Background(), "hello"); err == nil {
		t.Fatal("expected error when API is unreachable")
	}
}
