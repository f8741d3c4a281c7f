package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client fetches episode transcripts from the transcript API. The API is
// keyed by the episode's audio URL; transcription happens on their side.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a transcript API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch returns the plain-text transcript for an episode audio URL.
func (c *Client) Fetch(ctx context.Context, audioURL string) (string, error) {
	q := url.Values{}
	q.Set("audio_url", audioURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcripts?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("no transcript available for episode")
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("transcript API returned %d: %s", resp.StatusCode, raw)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode transcript response: %w", err)
	}
	return parsed.Text, nil
}
