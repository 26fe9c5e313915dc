package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lavindu17/ai-project-l2/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k1", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery, "the key never travels in the url")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"candidates":[{"finishReason":"STOP","content":{"parts":[{"text":"hello "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL, "k1", "gemini-test")
	res, err := g.Generate(context.Background(), GenerateRequest{Prompt: "hi", JSON: true, Temperature: 0.7, MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "hello there", res.Text)
	assert.False(t, res.Blocked)

	genCfg := got["generationConfig"].(map[string]interface{})
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.EqualValues(t, 50, genCfg["maxOutputTokens"])
}

func TestGeminiBlocked(t *testing.T) {
	for name, body := range map[string]string{
		"prompt feedback": `{"promptFeedback":{"blockReason":"SAFETY"}}`,
		"safety finish":   `{"candidates":[{"finishReason":"SAFETY","content":{"parts":[]}}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			res, err := NewGeminiClient(srv.URL, "k", "m").Generate(context.Background(), GenerateRequest{Prompt: "x"})
			require.NoError(t, err)
			assert.True(t, res.Blocked)
		})
	}
}

func TestGroqGenerate(t *testing.T) {
	var got struct {
		Model          string            `json:"model"`
		Messages       []Message         `json:"messages"`
		ResponseFormat map[string]string `json:"response_format"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"content":"{\"score\":0.4}"}}]}`))
	}))
	defer srv.Close()

	g := NewGroqClient(srv.URL, "gk", "llama")
	res, err := g.Generate(context.Background(), GenerateRequest{
		System:   "be brief",
		Messages: []Message{{Role: "user", Content: "hi"}},
		JSON:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score":0.4}`, res.Text)
	assert.Equal(t, "llama", got.Model)
	assert.Equal(t, []Message{{Role: "system", Content: "be brief"}, {Role: "user", Content: "hi"}}, got.Messages)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
}

func TestProviderStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusServiceUnavailable, ErrUnavailable},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":"slow down"}`))
		}))

		_, err := NewGroqClient(srv.URL, "k", "m").Generate(context.Background(), GenerateRequest{Prompt: "x"})
		assert.ErrorIs(t, err, tt.want)
		_, err = NewGeminiClient(srv.URL, "k", "m").Generate(context.Background(), GenerateRequest{Prompt: "x"})
		assert.ErrorIs(t, err, tt.want)
		srv.Close()
	}
}

func TestProviderServerErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewGroqClient(srv.URL, "k", "m").Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.False(t, isRateLimit(err))
	assert.Contains(t, err.Error(), "400")
}

func TestNewProvider(t *testing.T) {
	cfg := config.LLMConfig{TimeoutSeconds: 5}

	p, err := NewProvider("Gemini", cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
	assert.False(t, prefersMessages(p))

	p, err = NewProvider("groq", cfg)
	require.NoError(t, err)
	assert.True(t, prefersMessages(p))

	_, err = NewProvider("openai", cfg)
	assert.Error(t, err)
}
