// Package perplexity implements the deep-research provider on the
// Perplexity chat completions API.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oppscout/oppscout-backend/internal/domain"
)

const baseURL = "https://api.perplexity.ai/chat/completions"

const systemPrompt = "You are a research assistant helping find high-value opportunities " +
	"(jobs, grants, VC funding, contracts) that offer maximum income with " +
	"minimum time investment. Be specific and cite sources."

// Client performs synthesized research queries. Research returns
// ErrNotConfigured when no API key is set; callers treat that like any
// other recoverable branch failure.
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Available reports whether the provider has a credential.
func (c *Client) Available() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Research runs a deep-research evaluation of a single opportunity and
// returns the synthesized report text.
func (c *Client) Research(ctx context.Context, title, company, url string) (string, error) {
	query := fmt.Sprintf(`Research this opportunity:
- Title: %s
- Company: %s
- URL: %s

Provide:
1. Company reputation and stability
2. Typical compensation for this role
3. Work-life balance expectations
4. Red flags or concerns
5. Application tips`, title, company, url)

	return c.ask(ctx, query)
}

func (c *Client) ask(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrNotConfigured
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: 0.1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("perplexity returned %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("json unmarshal: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("perplexity returned no choices")
	}
	return apiResp.Choices[0].Message.Content, nil
}
