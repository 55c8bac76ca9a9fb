package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"viralclip/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLMClient(t *testing.T, url string) *llmClient {
	t.Helper()
	cfg := &config.Config{LLMBaseURL: url + "/", LLMModel: "test-model", LLMTimeoutSec: 5, LLMRequestsPerSec: 100}
	return NewLLMClient(cfg, "sk-test").(*llmClient)
}

func TestLLMClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model          string        `json:"model"`
			Messages       []ChatMessage `json:"messages"`
			ResponseFormat struct {
				Type       string `json:"type"`
				JSONSchema struct {
					Name   string `json:"name"`
					Strict bool   `json:"strict"`
				} `json:"json_schema"`
			} `json:"response_format"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Len(t, body.Messages, 2)
		assert.Equal(t, "json_schema", body.ResponseFormat.Type)
		assert.Equal(t, "viral_titles", body.ResponseFormat.JSONSchema.Name)
		assert.True(t, body.ResponseFormat.JSONSchema.Strict)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"titles\":[\"a\"]}"}}]}`))
	}))
	defer srv.Close()

	c := newTestLLMClient(t, srv.URL)
	out, err := c.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "u"},
	}, &ResponseSchema{Name: "viral_titles", Schema: map[string]any{"type": "object"}})
	require.NoError(t, err)
	assert.Equal(t, `{"titles":["a"]}`, out)
}

func TestLLMClientContentParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}]}}]}`))
	}))
	defer srv.Close()

	out, err := newTestLLMClient(t, srv.URL).Complete(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestLLMClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"null content", http.StatusOK, `{"choices":[{"message":{"content":null}}]}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestLLMClient(t, srv.URL).Complete(context.Background(), nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestLLMClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestLLMClient(t, srv.URL)
	c.timeout = 50 * time.Millisecond
	_, err := c.Complete(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm timeout")
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", in: `Sure! {"a":{"b":2}} hope it helps`, want: `{"a":{"b":2}}`},
		{name: "empty", in: "  ", wantErr: true},
		{name: "no object", in: "nothing here", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
