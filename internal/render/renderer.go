// Package render turns scene text into a PNG via an external rendering
// service. It is a pure side transformation: callers must fall back to
// delivering the original text when rendering fails.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageBytes bounds how much of a render response is read.
const maxImageBytes = 8 << 20

// Client posts scene text to the render endpoint and returns PNG bytes.
type Client struct {
	url  string
	http *http.Client
}

// NewClient builds a render client for the configured endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Render posts the text and returns the rendered PNG.
func (c *Client) Render(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read render response: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("render service returned empty image")
	}
	return img, nil
}
