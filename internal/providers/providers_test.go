package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/smartcommits/internal/config"
)

func TestMain(m *testing.M) {
	retryInitialInterval = time.Millisecond
	retryMaxInterval = 5 * time.Millisecond
	os.Exit(m.Run())
}

func chatServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, Options) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return server, Options{Model: "test-model", MaxRetries: 3, BaseURL: server.URL, Client: server.Client()}
}

func writeChat(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(chatResponse{
		Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: content}}},
		Usage:   chatUsage{TotalTokens: 42},
	})
}

func TestGroq_Generate(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Missing or wrong Authorization header")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v, want system then user", req.Messages)
		}
		if req.MaxTokens != defaultMaxTokens {
			t.Errorf("max_tokens = %d, want default", req.MaxTokens)
		}
		writeChat(w, "  feat: add login  \n")
	})

	g := NewGroq("test-key", opts)
	resp, err := g.Generate(context.Background(), Request{SystemPrompt: "sys", UserPrompt: "diff"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "feat: add login" {
		t.Errorf("Content = %q, want trimmed message", resp.Content)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", resp.TokensUsed)
	}
	if g.Name() != "groq" {
		t.Errorf("Name = %q", g.Name())
	}
}

func TestOpenRouter_Headers(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Title") != "smartcommits" {
			t.Error("missing X-Title header")
		}
		if r.Header.Get("HTTP-Referer") == "" {
			t.Error("missing HTTP-Referer header")
		}
		writeChat(w, "fix: handle nil")
	})
	g := NewOpenRouter("test-key", opts)
	if _, err := g.Generate(context.Background(), Request{UserPrompt: "diff"}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
}

func TestChat_RateLimitRetried(t *testing.T) {
	var attempts atomic.Int32
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeChat(w, "chore: retry")
	})
	resp, err := NewGroq("k", opts).Generate(context.Background(), Request{UserPrompt: "x"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "chore: retry" {
		t.Errorf("Content = %q", resp.Content)
	}
	if attempts.Load() != 3 {
		t.Errorf("attempts = %d, want 3", attempts.Load())
	}
}

func TestChat_ServerErrorExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	opts.MaxRetries = 2
	_, err := NewGroq("k", opts).Generate(context.Background(), Request{UserPrompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts.Load() != 3 {
		t.Errorf("attempts = %d, want 3 (1 + 2 retries)", attempts.Load())
	}
}

func TestChat_AuthErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api_key=gsk_abcdefghijklmnopqrstuvwxyz"}`))
	})
	_, err := NewGroq("k", opts).Generate(context.Background(), Request{UserPrompt: "x"})
	if !IsAuthError(err) {
		t.Fatalf("error = %v, want AuthError", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1", attempts.Load())
	}
	if strings.Contains(err.Error(), "abcdefghijklmnop") {
		t.Errorf("error leaked key material: %v", err)
	}
}

func TestChat_BadRequestNotRetried(t *testing.T) {
	var attempts atomic.Int32
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad model"}`))
	})
	_, err := NewGroq("k", opts).Generate(context.Background(), Request{UserPrompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("error = %v, want status 400", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1", attempts.Load())
	}
}

func TestChat_EmptyContent(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChat(w, "   ")
	})
	_, err := NewGroq("k", opts).Generate(context.Background(), Request{UserPrompt: "x"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestChat_NoChoices(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	if _, err := NewGroq("k", opts).Generate(context.Background(), Request{UserPrompt: "x"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestChat_ContextCancelled(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	opts.MaxRetries = 10
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGroq("k", opts).Generate(ctx, Request{UserPrompt: "x"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestCohere_Generate(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer co-key" {
			t.Error("Missing or wrong Authorization header")
		}
		var req cohereRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "the diff" || req.Preamble != "be brief" {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"text":"docs: update readme","meta":{"billed_units":{"input_tokens":10,"output_tokens":5}}}`))
	})
	c := NewCohere("co-key", opts)
	resp, err := c.Generate(context.Background(), Request{SystemPrompt: "be brief", UserPrompt: "the diff"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Content != "docs: update readme" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("TokensUsed = %d, want 15", resp.TokensUsed)
	}
}

func TestCohere_Forbidden(t *testing.T) {
	_, opts := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := NewCohere("k", opts).Generate(context.Background(), Request{UserPrompt: "x"})
	if !IsAuthError(err) {
		t.Errorf("error = %v, want AuthError", err)
	}
}

func TestNew(t *testing.T) {
	for _, name := range config.Providers {
		g, err := New(name, "key", Options{VerifySSL: true})
		if err != nil {
			t.Errorf("New(%q) error: %v", name, err)
			continue
		}
		if g.Name() != name {
			t.Errorf("Name = %q, want %q", g.Name(), name)
		}
	}
	if _, err := New("unknown", "key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := New("groq", "", Options{}); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestOptionsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.API.Timeout = 12
	cfg.API.MaxRetries = 1
	opts := OptionsFrom(cfg)
	if opts.Timeout != 12*time.Second {
		t.Errorf("Timeout = %v", opts.Timeout)
	}
	if opts.MaxRetries != 1 || !opts.VerifySSL {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Model != "llama3-70b-8192" {
		t.Errorf("Model = %q", opts.Model)
	}
}

func TestHTTPClient_InsecureTransport(t *testing.T) {
	c := httpClient(Options{VerifySSL: false, Timeout: time.Second})
	tr, ok := c.Transport.(*http.Transport)
	if !ok || tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("verify_ssl=false should skip certificate verification")
	}
	if c := httpClient(Options{VerifySSL: true}); c.Transport != nil {
		t.Error("verify_ssl=true should use the default transport")
	}
}

func TestErrorBody_Truncates(t *testing.T) {
	got := errorBody([]byte(strings.Repeat("x", 500)))
	if len(got) != maxErrorBody+3 {
		t.Errorf("len = %d, want %d", len(got), maxErrorBody+3)
	}
}
