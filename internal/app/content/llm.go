package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"typerace/internal/app/race"
	"typerace/internal/pkg/logx"
)

const (
	systemPrompt = "You are a helpful AI assistant."
	temperature  = 0.7

	// maxErrorBody caps how much of an upstream error body is kept for logs.
	maxErrorBody = 512
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// LLMGenerator calls an OpenAI-compatible chat completion endpoint.
type LLMGenerator struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   zerolog.Logger
}

// NewLLMGenerator returns a generator posting to endpoint. timeout bounds each call.
func NewLLMGenerator(endpoint, apiKey, model string, timeout time.Duration) *LLMGenerator {
	return &LLMGenerator{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		logger:   logx.Component("content"),
	}
}

// Generate implements race.ContentGenerator.
func (g *LLMGenerator) Generate(ctx context.Context, cfg race.ContentConfig) (string, error) {
	prompt, err := Prompt(cfg)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   MaxTokens(cfg.Type),
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	start := time.Now()
	res, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion endpoint: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return "", fmt.Errorf("completion endpoint returned %d: %s", res.StatusCode, snippet)
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("completion response is empty")
	}

	g.logger.Debug().
		Str("type", cfg.Type).
		Str("genre", cfg.Genre).
		Dur("latency", time.Since(start)).
		Int("chars", len(text)).
		Msg("Content generated")

	return text, nil
}
