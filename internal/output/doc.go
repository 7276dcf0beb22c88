// Package output formats security self-test reports for display or machine
// consumption.
//
// Four formats are supported:
//   - text     human-readable terminal output with colored statuses (default)
//   - json     the full structured report
//   - markdown a summary table and per-check sections, for CI comments
//   - sarif    SARIF v2.1.0, one result per failed check
//
// Use [GetWriter] to obtain a [Writer] for a format string, then call
// [Writer.Write] with an [io.Writer] and a [*selftest.Report].
// [WriteReport] handles the destination.
package output
