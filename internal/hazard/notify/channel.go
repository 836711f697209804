package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Channel delivers rendered notification content to an external messenger.
type Channel interface {
	Send(ctx context.Context, content string) error
}

const telegramAPIBase = "https://api.telegram.org"

type telegramPayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// TelegramChannel sends messages through the Telegram Bot API.
type TelegramChannel struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// TelegramOption configures the channel.
type TelegramOption func(*TelegramChannel)

// WithTelegramHTTPClient overrides the HTTP client.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(ch *TelegramChannel) {
		if client != nil {
			ch.client = client
		}
	}
}

// WithTelegramBaseURL overrides the API base URL. Used in tests.
func WithTelegramBaseURL(baseURL string) TelegramOption {
	return func(ch *TelegramChannel) {
		if baseURL != "" {
			ch.baseURL = baseURL
		}
	}
}

// NewTelegramChannel constructs a Telegram channel.
func NewTelegramChannel(token, chatID string, opts ...TelegramOption) (*TelegramChannel, error) {
	if token == "" || chatID == "" {
		return nil, errors.New("telegram channel: token and chat id are required")
	}
	channel := &TelegramChannel{
		token:   token,
		chatID:  chatID,
		baseURL: telegramAPIBase,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(channel)
	}
	return channel, nil
}

// Send posts one sendMessage call. A non-200 response counts as a failure
// so callers can report the forwarding status.
func (t *TelegramChannel) Send(ctx context.Context, content string) error {
	if t == nil || t.token == "" {
		return errors.New("telegram channel: not configured")
	}
	body, err := json.Marshal(telegramPayload{ChatID: t.chatID, Text: content})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram channel: sendMessage returned %d", resp.StatusCode)
	}
	return nil
}
