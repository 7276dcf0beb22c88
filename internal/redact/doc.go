// Package redact scrubs credentials from text before it leaves the process.
//
// Two pattern sets live here. [Secrets] is the broad set applied to staged
// diffs before they are sent to an LLM provider: API keys for the supported
// providers, JWTs, private key headers, cloud credentials. [Message] is the
// narrow, label-preserving set applied to every log record: the value after
// an api_key / token / password / secret label or a Bearer scheme is
// replaced, the label is kept so the log line stays readable.
//
// [Mask] renders a credential for display with only a short prefix visible.
// [Writer] wraps a log sink so that every record written through it is
// passed through [Message].
package redact
