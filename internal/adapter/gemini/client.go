// Package gemini adapts the Google Gen AI SDK to the narrator's chat interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini response has no text")

// Client implements narrator.ChatProvider on top of genai.
type Client struct {
	client *genai.Client
	logger *slog.Logger
}

// NewClient creates a Gemini API client. baseURL overrides the API endpoint
// and may be empty.
func NewClient(ctx context.Context, apiKey, baseURL string, logger *slog.Logger) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, logger: logger}, nil
}

// ChatCompletion sends the conversation to model. System messages become the
// system instruction; the remaining turns are sent in order.
func (c *Client) ChatCompletion(ctx context.Context, messages []domain.ChatMessage, model string) (string, error) {
	var (
		contents []*genai.Content
		config   *genai.GenerateContentConfig
		system   []string
	)
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	if len(system) > 0 {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("gemini content received", "model", model, "chars", len(text))
	return text, nil
}
