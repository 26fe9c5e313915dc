package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/config"
)

// Message is one chat message in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest carries either a single Prompt or a System + Messages chat.
type GenerateRequest struct {
	System      string
	Messages    []Message
	Prompt      string
	JSON        bool
	Temperature float64
	MaxTokens   int
}

// GenerateResult is the model output. Blocked marks a content-safety refusal,
// which is not an error.
type GenerateResult struct {
	Text    string
	Blocked bool
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// ChatProvider is implemented by providers that take role-tagged messages
// rather than one flattened prompt.
type ChatProvider interface {
	Provider
	Chat() bool
}

func prefersMessages(p Provider) bool {
	cp, ok := p.(ChatProvider)
	return ok && cp.Chat()
}

// NewProvider builds the named provider from config.
func NewProvider(name string, cfg config.LLMConfig) (Provider, error) {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	switch strings.ToLower(name) {
	case "gemini":
		return &GeminiClient{baseURL: cfg.Gemini.BaseURL, apiKey: cfg.Gemini.APIKey, model: cfg.Gemini.Model, client: client}, nil
	case "groq":
		return &GroqClient{baseURL: cfg.Groq.BaseURL, apiKey: cfg.Groq.APIKey, model: cfg.Groq.Model, client: client}, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", name)
}

// --- Gemini generateContent ---

type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	return &GeminiClient{baseURL: baseURL, apiKey: apiKey, model: model, client: &http.Client{}}
}

func (g *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (g *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	var contents []geminiContent
	if req.Prompt != "" {
		contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}})
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	genCfg := map[string]interface{}{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = req.MaxTokens
	}
	if req.JSON {
		genCfg["responseMimeType"] = "application/json"
	}
	body := map[string]interface{}{
		"contents":         contents,
		"generationConfig": genCfg,
	}
	if req.System != "" {
		body["systemInstruction"] = geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(g.baseURL, "/"), url.PathEscape(g.model))

	var result struct {
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
		Candidates []struct {
			FinishReason string        `json:"finishReason"`
			Content      geminiContent `json:"content"`
		} `json:"candidates"`
	}
	if err := postJSON(ctx, g.client, endpoint, map[string]string{"x-goog-api-key": g.apiKey}, body, &result); err != nil {
		return GenerateResult{}, fmt.Errorf("gemini: %w", err)
	}
	if result.PromptFeedback.BlockReason != "" {
		return GenerateResult{Blocked: true}, nil
	}
	if len(result.Candidates) == 0 {
		return GenerateResult{}, fmt.Errorf("gemini: empty candidates")
	}
	cand := result.Candidates[0]
	if cand.FinishReason == "SAFETY" && len(cand.Content.Parts) == 0 {
		return GenerateResult{Blocked: true}, nil
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return GenerateResult{Text: sb.String()}, nil
}

// --- Groq (OpenAI-compatible chat/completions) ---

type GroqClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewGroqClient(baseURL, apiKey, model string) *GroqClient {
	return &GroqClient{baseURL: baseURL, apiKey: apiKey, model: model, client: &http.Client{}}
}

func (g *GroqClient) Name() string { return "groq" }

func (g *GroqClient) Chat() bool { return true }

func (g *GroqClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	var messages []Message
	if req.System != "" {
		messages = append(messages, Message{Role: "system", Content: req.System})
	}
	messages = append(messages, req.Messages...)
	if req.Prompt != "" {
		messages = append(messages, Message{Role: "user", Content: req.Prompt})
	}

	body := map[string]interface{}{
		"model":       g.model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	var result struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	if err := postJSON(ctx, g.client, strings.TrimRight(g.baseURL, "/")+"/chat/completions", headers, body, &result); err != nil {
		return GenerateResult{}, fmt.Errorf("groq: %w", err)
	}
	if len(result.Choices) == 0 {
		return GenerateResult{}, fmt.Errorf("groq: empty choices")
	}
	if result.Choices[0].FinishReason == "content_filter" {
		return GenerateResult{Blocked: true}, nil
	}
	return GenerateResult{Text: result.Choices[0].Message.Content}, nil
}

// --- HTTP helper ---

func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("llm call: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, truncate(string(data), 200))
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, truncate(string(data), 200))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("llm status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
