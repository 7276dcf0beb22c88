// Package secerr defines the error taxonomy shared by the security-sensitive
// parts of smartcommits.
//
// [SecurityError] is the single error type returned across package
// boundaries for policy violations. Its message names the violated rule
// category and never the value that triggered it. The underlying cause is
// kept for [errors.Unwrap] so that a caller can log it through the redacted
// logger, but it is never part of Error().
//
// [Normalize] is the explicit boundary mapping from internal errors
// (timeouts, process failures, anything unexpected) to a SecurityError.
package secerr
