// Package providers implements the Generator interface for each supported
// LLM provider.
//
// Groq and OpenRouter speak the OpenAI chat-completions protocol and share
// the [Chat] client; Cohere has its own request shape. All providers share
// a retry helper built on cenkalti/backoff that retries rate limits and
// server errors only. Error bodies returned by a provider are redacted
// before they reach an error message.
//
// HTTP clients and base URLs are injectable so that tests can redirect
// calls to local httptest servers without making live API requests.
//
// Use [New] to obtain a Generator by provider name.
package providers
