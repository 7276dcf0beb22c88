package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const cohereURL = "https://api.cohere.ai/v1/chat"

// Cohere implements Generator for Cohere's chat API.
type Cohere struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	client     *http.Client
}

// NewCohere creates a Cohere provider.
func NewCohere(apiKey string, opts Options) *Cohere {
	url := cohereURL
	if opts.BaseURL != "" {
		url = opts.BaseURL
	}
	return &Cohere{
		apiKey:     apiKey,
		model:      opts.Model,
		baseURL:    url,
		maxRetries: opts.MaxRetries,
		client:     httpClient(opts),
	}
}

func (c *Cohere) Name() string { return "cohere" }

func (c *Cohere) Generate(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	body := cohereRequest{
		Model:     c.model,
		Message:   req.UserPrompt,
		Preamble:  req.SystemPrompt,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Accept":        "application/json",
	}

	var resp Response
	err = retryWithBackoff(ctx, c.maxRetries, func() error {
		respBody, err := postJSON(ctx, c.client, c.baseURL, headers, payload)
		if err != nil {
			return err
		}

		var result cohereResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		content := strings.TrimSpace(result.Text)
		if content == "" {
			return ErrEmptyResponse
		}
		units := result.Meta.BilledUnits
		resp = Response{
			Content:    content,
			TokensUsed: units.InputTokens + units.OutputTokens,
		}
		return nil
	})
	if err != nil {
		return Response{}, fmt.Errorf("cohere: %w", err)
	}
	return resp, nil
}

type cohereRequest struct {
	Model       string   `json:"model,omitempty"`
	Message     string   `json:"message"`
	Preamble    string   `json:"preamble,omitempty"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type cohereResponse struct {
	Text string     `json:"text"`
	Meta cohereMeta `json:"meta"`
}

type cohereMeta struct {
	BilledUnits cohereBilledUnits `json:"billed_units"`
}

type cohereBilledUnits struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
