// Package groq talks to Groq's OpenAI-compatible chat-completion API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
)

const chatCompletionsPath = "/openai/v1/chat/completions"

// ErrEmptyResponse is returned when a completion carries no usable content.
var ErrEmptyResponse = errors.New("chat completion has no content")

// Client implements narrator.ChatProvider.
type Client struct {
	apiKey     string
	baseURL    string // without trailing slash
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Groq client.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
}

// ChatCompletion submits messages to model and returns the first choice's
// message content.
func (c *Client) ChatCompletion(ctx context.Context, messages []domain.ChatMessage, model string) (string, error) {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat completion failed: %s: %s", resp.Status, apiErrorMessage(raw))
	}

	result, err := domain.DecodeValue(resp.Body)
	if err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	content, err := firstChoiceContent(result)
	if err != nil {
		return "", err
	}

	c.logger.Debug("chat completion received",
		"model", model,
		"duration", time.Since(start),
		"chars", len(content),
	)
	return content, nil
}

func firstChoiceContent(result domain.Value) (string, error) {
	choices, ok := result.Field("choices")
	if !ok || choices.Kind() != domain.KindArray {
		return "", fmt.Errorf("%w: response has no choices", ErrEmptyResponse)
	}
	if choices.Len() == 0 {
		return "", fmt.Errorf("%w: choices is empty", ErrEmptyResponse)
	}
	content, ok := choices.Get("0.message.content")
	if !ok {
		return "", fmt.Errorf("%w: choices[0] has no message.content", ErrEmptyResponse)
	}
	text, ok := content.AsString()
	if !ok {
		return "", fmt.Errorf("%w: message.content is a %s", ErrEmptyResponse, content.Kind())
	}
	return text, nil
}

// apiErrorMessage extracts error.message from an OpenAI-style error body and
// falls back to the raw body.
func apiErrorMessage(raw []byte) string {
	if v, err := domain.ParseValue(raw); err == nil {
		if msg, ok := v.Get("error.message"); ok {
			if s, ok := msg.AsString(); ok {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
