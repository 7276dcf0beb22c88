package output

import (
	"io"
	"strings"

	"github.com/dshills/smartcommits/internal/selftest"
)

// MarkdownWriter outputs a summary table followed by one section per check.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *selftest.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	ew.printf("## smartcommits security self-test\n\n")
	ew.printf("| Status | Count |\n")
	ew.printf("|--------|-------|\n")
	ew.printf("| Safe | %d |\n", s.Safe)
	ew.printf("| Vulnerable | %d |\n", s.Vulnerable)
	ew.printf("| Errors | %d |\n", s.Errors)
	ew.printf("| Skipped | %d |\n", s.Skipped)
	ew.printf("| **Total** | **%d** |\n\n", s.Total)

	if s.Vulnerable == 0 {
		ew.println("No vulnerabilities found. :white_check_mark:\n")
	}

	for _, r := range report.Results {
		ew.printf("### %s `%s`\n\n", mdStatusIcon(r.Status), r.Check)
		ew.printf("**%s** | %s\n\n", r.Status, r.Severity)
		ew.printf("%s\n\n", mdEscape(r.Message))
		if len(r.Details) > 0 {
			for _, d := range r.Details {
				ew.printf("- %s\n", mdEscape(d))
			}
			ew.println("")
		}
	}

	ew.printf("*Run `%s` completed in %dms*\n", report.RunID, report.ElapsedMs)
	return ew.err
}

func mdStatusIcon(s selftest.Status) string {
	switch s {
	case selftest.StatusSafe:
		return ":white_check_mark:"
	case selftest.StatusVulnerable:
		return ":red_circle:"
	case selftest.StatusError:
		return ":warning:"
	default:
		return ":fast_forward:"
	}
}

// mdEscape keeps check output from opening HTML or table markup.
func mdEscape(s string) string {
	return strings.NewReplacer("<", "&lt;", ">", "&gt;", "|", `\|`).Replace(s)
}
