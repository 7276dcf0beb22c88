package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/smartcommits/internal/selftest"
	"github.com/fatih/color"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct {
	// Color enables ANSI colors for statuses.
	Color bool
}

func (t *TextWriter) Write(w io.Writer, report *selftest.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	ew.printf("smartcommits security self-test %s\n", report.Version)
	ew.printf("Run: %s\n", report.RunID)
	ew.println(strings.Repeat("─", 60))

	for _, r := range report.Results {
		ew.printf("%s %s\n", t.status(r.Status), r.Check)
		for _, line := range wrapText(r.Message, 70) {
			ew.printf("    %s\n", line)
		}
		if r.Status == selftest.StatusVulnerable {
			ew.printf("    Severity: %s\n", r.Severity)
		}
		for _, d := range r.Details {
			ew.printf("    - %s\n", d)
		}
	}

	ew.println(strings.Repeat("─", 60))
	ew.printf("Checks: %d total (%d safe, %d vulnerable, %d errors, %d skipped)\n",
		s.Total, s.Safe, s.Vulnerable, s.Errors, s.Skipped)
	if s.Vulnerable > 0 {
		ew.printf("Vulnerable: %d high, %d medium\n", s.HighSeverity, s.MediumSeverity)
		ew.println(t.paint(color.FgRed, "Security issues found."))
	} else {
		ew.println(t.paint(color.FgGreen, "No vulnerabilities found."))
	}
	ew.printf("Completed in %dms\n", report.ElapsedMs)

	return ew.err
}

func (t *TextWriter) status(s selftest.Status) string {
	label := fmt.Sprintf("[%-10s]", s)
	switch s {
	case selftest.StatusSafe:
		return t.paint(color.FgGreen, label)
	case selftest.StatusVulnerable:
		return t.paint(color.FgRed, label)
	case selftest.StatusError:
		return t.paint(color.FgYellow, label)
	default:
		return t.paint(color.FgHiBlack, label)
	}
}

func (t *TextWriter) paint(attr color.Attribute, s string) string {
	c := color.New(attr, color.Bold)
	if t.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
