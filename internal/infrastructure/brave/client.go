// Package brave implements the web-search provider on the Brave Search
// API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oppscout/oppscout-backend/internal/domain"
)

const (
	baseURL      = "https://api.search.brave.com/res/v1/web/search"
	maxPageCount = 20 // Brave caps count at 20 per request
)

// Client queries the Brave web search API. A missing API key makes
// Search return (nil, nil) so the aggregator degrades that branch
// instead of failing the batch.
type Client struct {
	apiKey string
	client *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Available reports whether the provider has a credential.
func (c *Client) Available() bool { return c.apiKey != "" }

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
}

// Search executes a web search and returns raw results tagged with the
// "brave" source. freshness follows Brave's codes (pd/pw/pm/py).
func (c *Client) Search(ctx context.Context, query, freshness string, count int) ([]domain.RawResult, error) {
	if c.apiKey == "" {
		return nil, nil
	}
	if count <= 0 || count > maxPageCount {
		count = maxPageCount
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("freshness", freshness)
	params.Set("search_lang", "en")
	params.Set("text_decorations", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp braveResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	results := make([]domain.RawResult, 0, len(apiResp.Web.Results))
	for _, r := range apiResp.Web.Results {
		results = append(results, domain.RawResult{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Source:      "brave",
		})
	}
	return results, nil
}
