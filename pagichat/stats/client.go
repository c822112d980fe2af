// Package stats reads the server's aggregate counters over plain HTTP. It
// operates outside the chat protocol: a failed poll leaves stale numbers on
// screen until the next tick, nothing more.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Stats is the snapshot the server exposes on its stats endpoint.
type Stats struct {
	UsersOnline int `json:"users_online"`
	RoomsCount  int `json:"rooms_count"`
}

// Client fetches stats from a fixed endpoint URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a stats client for the given endpoint URL,
// e.g. "http://localhost:8080/api/stats".
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// Fetch issues one read-only request for the current counters.
func (c *Client) Fetch(ctx context.Context) (Stats, error) {
	var stats Stats

	req, err := http.NewRequestWithContext(ctx, "GET", c.url, http.NoBody)
	if err != nil {
		return stats, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return stats, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return stats, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return stats, fmt.Errorf("http error: %s (status %d)", string(body), resp.StatusCode)
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		return stats, fmt.Errorf("unmarshal response: %w", err)
	}
	return stats, nil
}
