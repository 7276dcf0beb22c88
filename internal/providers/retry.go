package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/redact"
)

// Retry timing. Variables so tests can shorten them.
var (
	retryInitialInterval = time.Second
	retryMaxInterval     = 10 * time.Second
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// maxErrorBody bounds how much of an error body is kept in messages.
const maxErrorBody = 200

// ErrEmptyResponse is returned when the provider answered without content.
var ErrEmptyResponse = errors.New("empty content in API response")

type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.statusCode, e.body)
}

// AuthError reports a rejected API key. It is never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func retryable(err error) bool {
	var rl *rateLimitError
	var se *serverError
	return errors.As(err, &rl) || errors.As(err, &se)
}

func newRetryBackoff(ctx context.Context, maxRetries int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// retryWithBackoff calls fn until it succeeds, fails with a non-retryable
// error, or maxRetries retries have been spent.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	op := func() error {
		err := fn()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logging.Debug().Err(err).Dur("retry_in", next).Msg("provider request failed, retrying")
	}
	return backoff.RetryNotify(op, newRetryBackoff(ctx, maxRetries), notify)
}

// postJSON sends payload and classifies the response status.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %s", redact.Message(err.Error()))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch code := httpResp.StatusCode; {
	case code == http.StatusTooManyRequests:
		return nil, &rateLimitError{}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, &AuthError{StatusCode: code, Message: errorBody(respBody)}
	case code >= 500:
		return nil, &serverError{statusCode: code, body: errorBody(respBody)}
	case code != http.StatusOK:
		return nil, fmt.Errorf("API error (status %d): %s", code, errorBody(respBody))
	}
	return respBody, nil
}

// errorBody returns a redacted, shortened form of a provider error body.
func errorBody(body []byte) string {
	s := redact.Secrets(redact.Message(string(body)))
	if r := []rune(s); len(r) > maxErrorBody {
		s = string(r[:maxErrorBody]) + "..."
	}
	return s
}
