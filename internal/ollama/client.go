// Package ollama wraps the Ollama API for the paraphrase and simplify modes.
// The rest of the pipeline is rule-based; this is the only network call the
// service makes, and every caller must tolerate it failing.
package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultModel   = "gpt-oss:20b"
	DefaultTimeout = 120 * time.Second
)

// Client wraps the Ollama API client.
type Client struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new Ollama client.
func New(ollamaURL, model string) (*Client, error) {
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultModel
	}

	baseURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		model:   model,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}, nil
}

// GenerateResponse sends a prompt to the model and returns the full response.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: new(bool), // false
	}

	var response strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	result := strings.TrimSpace(response.String())
	c.logger.Debug("ollama response received", "model", c.model, "chars", len(result))
	return result, nil
}

// Paraphrase rewrites the text in a different wording with the same meaning.
func (c *Client) Paraphrase(ctx context.Context, text, tone string) (string, error) {
	prompt := fmt.Sprintf(`Paraphrase the following text.

Requirements:
- Keep the meaning identical
- Use a %s tone
- Keep roughly the same length
- Output ONLY the paraphrased text, no commentary, no quotes

Text:
%s

Paraphrased text:`, toneWord(tone), text)

	return c.GenerateResponse(ctx, prompt)
}

// Simplify rewrites the text in plainer language.
func (c *Client) Simplify(ctx context.Context, text, tone string) (string, error) {
	prompt := fmt.Sprintf(`Simplify the following text.

Requirements:
- Use short sentences and common words
- Keep every fact; drop nothing important
- Use a %s tone
- Output ONLY the simplified text, no commentary, no quotes

Text:
%s

Simplified text:`, toneWord(tone), text)

	return c.GenerateResponse(ctx, prompt)
}

func toneWord(tone string) string {
	switch tone {
	case "formal", "academic":
		return tone
	default:
		return "casual"
	}
}
