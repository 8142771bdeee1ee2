package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/remedyhq/remedy-agent/internal/config"
)

const (
	geminiEndpoint     = "https://generativelanguage.googleapis.com/v1beta/models"
	geminiDefaultModel = "gemini-2.5-pro"
)

// GeminiCompleter implements Completer using the Gemini REST API.
type GeminiCompleter struct {
	cfg    config.AIConfig
	client *http.Client
}

// NewGemini creates a GeminiCompleter from cfg.
func NewGemini(cfg config.AIConfig) *GeminiCompleter {
	return &GeminiCompleter{
		cfg:    cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (g *GeminiCompleter) Name() string { return "gemini" }

func (g *GeminiCompleter) IsAvailable(ctx context.Context) bool {
	return g.cfg.GeminiKey != ""
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete calls the Gemini API. A missing key yields the neutral ranking
// (offline/dev fallback); any call failure yields the neutral result.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) string {
	if g.cfg.GeminiKey == "" {
		return EmptyRanking
	}

	model := g.cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("Gemini request failed", "error", err)
		return EmptyResult
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiEndpoint, model, g.cfg.GeminiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Warn("Gemini request failed", "error", err)
		return EmptyResult
	}
	req.Header.Set("content-type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		slog.Warn("Gemini request failed", "error", err)
		return EmptyResult
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		slog.Warn("Gemini request failed", "error", err)
		return EmptyResult
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("Gemini request failed",
			"status", resp.StatusCode, "body", string(respBody))
		return EmptyResult
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		slog.Warn("Gemini returned invalid JSON", "error", err)
		return EmptyResult
	}
	if apiResp.Error != nil {
		slog.Warn("Gemini request failed", "error", apiResp.Error.Message)
		return EmptyResult
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return EmptyResult
	}

	text := strings.TrimSpace(apiResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return EmptyResult
	}
	return text
}
