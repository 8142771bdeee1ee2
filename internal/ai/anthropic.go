package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/remedyhq/remedy-agent/internal/config"
)

const (
	anthropicMessagesEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicModelsEndpoint   = "https://api.anthropic.com/v1/models"
	anthropicVersionHeader    = "2023-06-01"
	anthropicDefaultModel     = "claude-sonnet-4-6"
)

// AnthropicCompleter implements Completer using the Anthropic REST API.
type AnthropicCompleter struct {
	cfg    config.AIConfig
	client *http.Client
}

// NewAnthropic creates an AnthropicCompleter from cfg.
func NewAnthropic(cfg config.AIConfig) *AnthropicCompleter {
	return &AnthropicCompleter{
		cfg:    cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *AnthropicCompleter) Name() string { return "anthropic" }

func (c *AnthropicCompleter) IsAvailable(ctx context.Context) bool {
	if c.cfg.AnthropicKey == "" {
		return false
	}
	// #nosec G107 -- anthropicModelsEndpoint is a compile-time constant.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, anthropicModelsEndpoint, nil)
	if err != nil {
		return false
	}
	req.Header.Set("x-api-key", c.cfg.AnthropicKey)
	req.Header.Set("anthropic-version", anthropicVersionHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete calls the Anthropic messages API. A missing key yields the
// neutral ranking; any call failure yields the neutral result.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) string {
	if c.cfg.AnthropicKey == "" {
		return EmptyRanking
	}

	model := c.cfg.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	payload := anthropicRequest{
		Model:     model,
		MaxTokens: 4096,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("Anthropic request failed", "error", err)
		return EmptyResult
	}

	// #nosec G107 -- anthropicMessagesEndpoint is a compile-time constant.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesEndpoint, bytes.NewReader(body))
	if err != nil {
		slog.Warn("Anthropic request failed", "error", err)
		return EmptyResult
	}
	req.Header.Set("x-api-key", c.cfg.AnthropicKey)
	req.Header.Set("anthropic-version", anthropicVersionHeader)
	req.Header.Set("content-type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("Anthropic request failed", "error", err)
		return EmptyResult
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		slog.Warn("Anthropic request failed", "error", err)
		return EmptyResult
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("Anthropic request failed",
			"status", resp.StatusCode, "body", string(respBody))
		return EmptyResult
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		slog.Warn("Anthropic returned invalid JSON", "error", err)
		return EmptyResult
	}
	if apiResp.Error != nil {
		slog.Warn("Anthropic request failed", "error", apiResp.Error.Message)
		return EmptyResult
	}
	if len(apiResp.Content) == 0 {
		return EmptyResult
	}

	text := strings.TrimSpace(apiResp.Content[0].Text)
	if text == "" {
		return EmptyResult
	}
	return text
}
