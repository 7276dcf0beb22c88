package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	groqURL       = "https://api.groq.com/openai/v1/chat/completions"
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"
)

// Chat implements Generator for OpenAI-compatible chat-completions APIs.
type Chat struct {
	name       string
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	headers    map[string]string
	client     *http.Client
}

// NewGroq creates a Groq provider.
func NewGroq(apiKey string, opts Options) *Chat {
	return newChat("groq", groqURL, apiKey, opts, nil)
}

// NewOpenRouter creates an OpenRouter provider. OpenRouter asks clients
// to identify themselves with the referer and title headers.
func NewOpenRouter(apiKey string, opts Options) *Chat {
	return newChat("openrouter", openRouterURL, apiKey, opts, map[string]string{
		"HTTP-Referer": "https://github.com/dshills/smartcommits",
		"X-Title":      "smartcommits",
	})
}

func newChat(name, url, apiKey string, opts Options, headers map[string]string) *Chat {
	if opts.BaseURL != "" {
		url = opts.BaseURL
	}
	return &Chat{
		name:       name,
		apiKey:     apiKey,
		model:      opts.Model,
		baseURL:    url,
		maxRetries: opts.MaxRetries,
		headers:    headers,
		client:     httpClient(opts),
	}
}

func (c *Chat) Name() string { return c.name }

func (c *Chat) Generate(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body := chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	for k, v := range c.headers {
		headers[k] = v
	}

	var resp Response
	err = retryWithBackoff(ctx, c.maxRetries, func() error {
		respBody, err := postJSON(ctx, c.client, c.baseURL, headers, payload)
		if err != nil {
			return err
		}

		var result chatResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}
		content := strings.TrimSpace(result.Choices[0].Message.Content)
		if content == "" {
			return ErrEmptyResponse
		}

		resp = Response{
			Content:    content,
			TokensUsed: result.Usage.TotalTokens,
		}
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", c.name, err)
	}
	return resp, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	TotalTokens int `json:"total_tokens"`
}
