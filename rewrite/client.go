// Package rewrite talks to the external message-rewrite service used to
// anonymize chat style during games.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type rewriteRequest struct {
	Text string `json:"text"`
}

type rewriteResponse struct {
	Text string `json:"text"`
}

// Rewrite returns the rewritten text, or an error the caller should treat as
// "relay the original".
func (c *Client) Rewrite(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(rewriteRequest{Text: text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rewrite", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rewrite service returned status %d", resp.StatusCode)
	}

	var out rewriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}
