package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/oppscout/oppscout-backend/internal/config"
	"github.com/oppscout/oppscout-backend/internal/domain"
)

// Client wraps the Gemini API for the three language-model capabilities
// the engine consumes: free-text completion, structured extraction, and
// text embeddings.
type Client struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	fastModel    *genai.GenerativeModel
	extractModel *genai.GenerativeModel
	embedder     *genai.EmbeddingModel
}

func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.3)

	fastModel := client.GenerativeModel(cfg.FastModel)
	fastModel.SetTemperature(0)

	extractModel := client.GenerativeModel(cfg.FastModel)
	extractModel.SetTemperature(0)
	extractModel.SetMaxOutputTokens(500)
	extractModel.ResponseMIMEType = "application/json"
	extractModel.ResponseSchema = extractionSchema()

	return &Client{
		client:       client,
		model:        model,
		fastModel:    fastModel,
		extractModel: extractModel,
		embedder:     client.EmbeddingModel(cfg.EmbeddingModel),
	}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

// Complete sends a prompt to the reasoning model and returns its text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return generate(ctx, c.model, prompt)
}

// CompleteFast sends a prompt to the cheaper low-latency model.
func (c *Client) CompleteFast(ctx context.Context, prompt string) (string, error) {
	return generate(ctx, c.fastModel, prompt)
}

func generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no content")
	}
	return text, nil
}

// Extract asks the fast model to infer structured opportunity fields from
// the title/description/url alone. A response that does not match the
// schema yields ErrExtractionFailed; callers keep the unenriched item.
func (c *Client) Extract(ctx context.Context, title, description, url string) (*domain.Extraction, error) {
	prompt := fmt.Sprintf(`Extract structured opportunity data from this search result.

Title: %s
Description: %s
URL: %s

Use null for any field you cannot infer. Income values are annual USD.
Skills are capped at the 5 most important.`, title, description, url)

	resp, err := c.extractModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}

	raw := responseText(resp)
	var out domain.Extraction
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return &out, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := c.embedder.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini returned empty embedding")
	}
	return res.Embedding.Values, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

// extractionSchema is the structured-output contract for Extract. Enum
// strings here mirror the domain enums; values outside them are still
// validated (and dropped) by the aggregator.
func extractionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"company":        {Type: genai.TypeString, Nullable: true},
			"income_low":     {Type: genai.TypeInteger, Nullable: true},
			"income_high":    {Type: genai.TypeInteger, Nullable: true},
			"effort_level":   {Type: genai.TypeString, Nullable: true, Enum: []string{"minimal", "light", "moderate", "full", "variable"}},
			"hours_per_week": {Type: genai.TypeInteger, Nullable: true},
			"remote":         {Type: genai.TypeBoolean, Nullable: true},
			"skills_required": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"opportunity_type": {Type: genai.TypeString, Nullable: true, Enum: []string{"job", "freelance", "grant", "vc_funding", "angel", "contract", "equity", "bounty"}},
		},
	}
}
