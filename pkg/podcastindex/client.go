package podcastindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SearchResult is one show returned by the podcast search API.
type SearchResult struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Publisher     string `json:"author"`
	Description   string `json:"description"`
	ImageURL      string `json:"image"`
	TotalEpisodes int    `json:"episodeCount"`
}

// Client is a stateless request/response client for the podcast search API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a podcast search client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Search queries the podcast directory by term.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("max", fmt.Sprint(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/byterm?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("podcast search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("podcast search returned %d: %s", resp.StatusCode, raw)
	}

	var parsed struct {
		Feeds []SearchResult `json:"feeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Feeds, nil
}
