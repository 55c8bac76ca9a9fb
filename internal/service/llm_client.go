package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"viralclip/internal/config"

	"golang.org/x/time/rate"
)

// ChatMessage is a single prompt turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseSchema names a strict JSON schema the completion must follow.
type ResponseSchema struct {
	Name   string
	Schema map[string]any
}

// LLMClient sends prompts to a hosted chat-completions endpoint and returns
// the raw message content.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage, schema *ResponseSchema) (string, error)
}

type llmClient struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewLLMClient creates an OpenAI-compatible client. Outbound calls are paced
// by LLM_REQUESTS_PER_SEC and bounded by LLM_TIMEOUT_SEC each.
func NewLLMClient(cfg *config.Config, apiKey string) LLMClient {
	timeout := time.Duration(cfg.LLMTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if cfg.LLMRequestsPerSec > 0 {
		limit = rate.Limit(cfg.LLMRequestsPerSec)
		burst = max(1, int(cfg.LLMRequestsPerSec))
	}
	return &llmClient{
		client:  &http.Client{},
		baseURL: strings.TrimRight(cfg.LLMBaseURL, "/"),
		model:   cfg.LLMModel,
		apiKey:  apiKey,
		timeout: timeout,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *llmClient) Complete(ctx context.Context, messages []ChatMessage, schema *ResponseSchema) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for llm rate limiter: %w", err)
	}

	payload := map[string]any{
		"model":    c.model,
		"stream":   false,
		"messages": messages,
	}
	if schema != nil {
		payload["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schema.Name,
				"strict": true,
				"schema": schema.Schema,
			},
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create llm request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("llm timeout after %s (model=%s)", c.timeout, c.model)
		}
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, truncate(string(rb), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", errors.New("llm response has no choices")
	}
	return messageContentToString(raw.Choices[0].Message.Content)
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		if b.Len() == 0 {
			return "", errors.New("llm content parts carry no text")
		}
		return b.String(), nil
	case nil:
		return "", errors.New("llm content is empty")
	default:
		return "", fmt.Errorf("unexpected llm content type %T", v)
	}
}

// extractJSONObject strips markdown fences and returns the outermost JSON object.
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
