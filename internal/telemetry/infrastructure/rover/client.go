package rover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	telemetry "aura-panel/internal/telemetry/domain"
)

// Client talks to the rover firmware over plain HTTP. The rover is an
// unreliable, polled data source: callers are expected to tolerate failures
// and simply try again on the next tick.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// NewClient constructs a rover client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("rover client: empty base url")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Status fetches the current sensor snapshot from GET /status.
func (c *Client) Status(ctx context.Context) (telemetry.Snapshot, error) {
	var snapshot telemetry.Snapshot
	if c == nil {
		return snapshot, errors.New("rover client: nil client")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return snapshot, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return snapshot, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return snapshot, fmt.Errorf("rover client: status returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return snapshot, err
	}
	snapshot.ReceivedAt = time.Now().UTC()
	return snapshot, nil
}

// BuzzerOff asks the rover to silence its physical buzzer. Any 2xx response
// is accepted; the call is best-effort and failures are the caller's to
// ignore.
func (c *Client) BuzzerOff(ctx context.Context) error {
	if c == nil {
		return errors.New("rover client: nil client")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/buzzer/off", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("rover client: buzzer off returned %d", resp.StatusCode)
	}
	return nil
}
