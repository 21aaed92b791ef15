// internal/tvmode/client.go
package tvmode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
)

// Fetcher loads the TV payload.
type Fetcher interface {
	Fetch(ctx context.Context) (*services.TVPayload, error)
}

// Client reads GET /v1/dashboard/tv from a running server.
type Client struct {
	url  string
	http *http.Client
}

type tvEnvelope struct {
	Success bool                `json:"success"`
	Data    *services.TVPayload `json:"data"`
	Error   *utils.APIError     `json:"error"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:  strings.TrimRight(baseURL, "/") + "/v1/dashboard/tv",
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Fetch(ctx context.Context) (*services.TVPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope tvEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success || envelope.Data == nil {
		msg := http.StatusText(resp.StatusCode)
		if envelope.Error != nil {
			msg = envelope.Error.Message
		}
		return nil, fmt.Errorf("dashboard returned %d: %s", resp.StatusCode, msg)
	}
	return envelope.Data, nil
}
