package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegramChannelSend(t *testing.T) {
	var gotPath string
	var gotPayload telegramPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	channel, err := NewTelegramChannel("bot-token", "chat-42", WithTelegramBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}

	if err := channel.Send(context.Background(), "Flame detected by onboard sensor"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(gotPath, "/botbot-token/sendMessage") {
		t.Fatalf("path = %s", gotPath)
	}
	if gotPayload.ChatID != "chat-42" {
		t.Fatalf("chat id = %s", gotPayload.ChatID)
	}
	if gotPayload.Text != "Flame detected by onboard sensor" {
		t.Fatalf("text = %s", gotPayload.Text)
	}
}

func TestTelegramChannelNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	channel, err := NewTelegramChannel("bot-token", "chat-42", WithTelegramBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new channel: %v", err)
	}
	if err := channel.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestNewTelegramChannelRequiresCredentials(t *testing.T) {
	if _, err := NewTelegramChannel("", "chat"); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := NewTelegramChannel("token", ""); err == nil {
		t.Fatal("expected error for empty chat id")
	}
}
