package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/smartcommits/internal/selftest"
)

func TestMarkdownWriter_Clean(t *testing.T) {
	var buf bytes.Buffer
	w := &MarkdownWriter{}
	if err := w.Write(&buf, cleanReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "## smartcommits security self-test") {
		t.Error("Missing heading")
	}
	if !strings.Contains(out, "No vulnerabilities found") {
		t.Error("Missing all-clear line")
	}
	if !strings.Contains(out, "| **Total** | **1** |") {
		t.Error("Missing total row")
	}
}

func TestMarkdownWriter_WithResults(t *testing.T) {
	var buf bytes.Buffer
	w := &MarkdownWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "No vulnerabilities found") {
		t.Error("should not claim all-clear")
	}
	for _, want := range []string{
		"| Vulnerable | 1 |",
		"### :red_circle: `api_key_exposure`",
		"**VULNERABLE** | HIGH",
		"- key visible in log output",
		"### :fast_forward: `dependency_vulnerabilities`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestMarkdownWriter_EscapesMarkup(t *testing.T) {
	report := cleanReport()
	report.Results[0].Details = []string{`message accepted: "<script>alert('xss')</script>"`}
	report.Summary = selftest.ComputeSummary(report.Results)

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("raw HTML should be escaped")
	}
}
