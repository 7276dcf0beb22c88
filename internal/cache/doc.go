// Package cache stores generated commit messages on disk so that
// re-running the hook on an unchanged index does not call the provider
// again.
//
// Entries are keyed by a SHA-256 hash of the provider name, model, and
// redacted diff content, and live under the repository's git directory
// ([Dir]). Each entry stores the message with a creation timestamp and a
// TTL in seconds; expired entries are skipped on read and removed on the
// next read or clear. Files are written atomically with mode 0600.
package cache
