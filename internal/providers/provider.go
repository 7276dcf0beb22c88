package providers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/dshills/smartcommits/internal/config"
	"github.com/dshills/smartcommits/internal/logging"
)

// Request contains the prompt sent to an LLM.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw completion returned by an LLM.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator is the provider abstraction interface.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Options tune a provider client.
type Options struct {
	Model      string
	Timeout    time.Duration
	MaxRetries int
	VerifySSL  bool
	// BaseURL replaces the provider's endpoint when set.
	BaseURL string
	// Client replaces the HTTP client built from Timeout and VerifySSL.
	Client *http.Client
}

const defaultMaxTokens = 150

// OptionsFrom builds Options from the api section of cfg.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		Model:      cfg.Model(),
		Timeout:    time.Duration(cfg.API.Timeout) * time.Second,
		MaxRetries: cfg.API.MaxRetries,
		VerifySSL:  cfg.API.VerifySSL,
	}
}

// New creates a provider by name.
func New(provider, apiKey string, opts Options) (Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is not set", provider)
	}
	switch provider {
	case "groq":
		return NewGroq(apiKey, opts), nil
	case "openrouter":
		return NewOpenRouter(apiKey, opts), nil
	case "cohere":
		return NewCohere(apiKey, opts), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func httpClient(opts Options) *http.Client {
	if opts.Client != nil {
		return opts.Client
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	if !opts.VerifySSL {
		logging.Warn().Msg("TLS certificate verification is disabled (api.verify_ssl=false)")
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		client.Transport = transport
	}
	return client
}
